package main

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func taskIDFromRequest(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, notFoundError("task not found")
	}
	return id, nil
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.tasks.createTask(input.Title, input.Description, identityFromRequest(r))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := app.tasks.listTasks(identityFromRequest(r), r.URL.Query().Get("status"))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) getAllTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := app.tasks.listAllTasks()
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) updateTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.tasks.updateStatus(id, input.Status, identityFromRequest(r))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) markTaskDoneHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	t, err := app.tasks.markDone(id, identityFromRequest(r))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) editTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.tasks.editTask(id, input.Title, input.Description, identityFromRequest(r))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	err = app.tasks.deleteTask(id, identityFromRequest(r))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
