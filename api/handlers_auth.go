package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	v := newValidator()
	v.checkCond(input.Name != "", "name", "must be provided")
	v.checkCond(len(input.Name) <= 255, "name", "must be atmost 255 characters")
	v.checkEmail(input.Email)
	v.checkRole(input.Role)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	existing, err := app.storage.getUserByEmail(input.Email)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, errors.New("email already in use"), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	userRole, _ := parseRole(input.Role)
	u := &user{
		CreatedAt:    time.Now().UTC(),
		Name:         input.Name,
		Email:        input.Email,
		Role:         userRole,
		PasswordHash: hash,
	}
	err = app.storage.insertUser(u)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	token, err := app.issueToken(u)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	app.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, struct {
		Token string `json:"token"`
		User  *user  `json:"user"`
	}{
		Token: token,
		User:  u,
	})
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	// The lookup key is the email alone. The account's stored role rides
	// along in the token, so a login never fails on a role mismatch.
	u, err := app.storage.getUserByEmail(input.Email)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	// Identical message for unknown email and wrong password, so a
	// caller cannot probe which emails have accounts.
	if u == nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}

	token, err := app.issueToken(u)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	app.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
		Role  role   `json:"role"`
	}{
		Token: token,
		Role:  u.Role,
	})
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

func (app *application) whoamiHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, getUserFromRequest(r))
}
