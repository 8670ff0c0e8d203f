package auth

import (
	"strings"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
)

// Messages shown to the user. The text is the contract with the screens.
const (
	MsgFillAllFields      = "Please fill in all fields"
	MsgEnterEmail         = "Please enter your email address"
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgPasswordTooShort   = "Password must be at least 6 characters."
	MsgNameRequired       = "Name is required."
	MsgNameTooShort       = "Name must be at least 2 characters"
	MsgPasswordsDiffer    = "Passwords do not match"
	MsgInvalidRole        = "Please choose customer or vendor."
	MsgInvalidCredentials = "Invalid email or password."
	MsgEmailNotConfirmed  = "Please confirm your email."
	MsgProfileNotFound    = "User profile not found."
	MsgProfileCreate      = "Failed to create user profile."
	MsgProfileFetch       = "Profile created but fetch failed."
	MsgNotLoggedIn        = "No user logged in"
	MsgGoogleFailed       = "Google sign-in failed. Please try again."
	MsgAccountExists      = "An account with this email already exists."
	MsgSignedOutMeanwhile = "Signed out before the operation finished."
	MsgImageUnreadable    = "Could not read the selected image."
)

// signInError translates a rejected password sign-in.
func signInError(err error) error {
	msg := client.Message(err)
	switch {
	case strings.Contains(msg, "Invalid login credentials"):
		return apperr.Wrap(apperr.Credentials, MsgInvalidCredentials, err)
	case strings.Contains(msg, "Email not confirmed"):
		return apperr.Wrap(apperr.Credentials, MsgEmailNotConfirmed, err)
	default:
		return apperr.Wrap(apperr.Transport, msg, err)
	}
}

// signUpError translates a rejected credential creation.
func signUpError(err error) error {
	msg := client.Message(err)
	if strings.Contains(msg, "already registered") || client.IsCode(err, "user_already_exists") || client.IsCode(err, "email_exists") {
		return apperr.Wrap(apperr.Conflict, MsgAccountExists, err)
	}
	return apperr.Wrap(apperr.Transport, msg, err)
}

// profileError translates a failed profile read.
func profileError(err error) error {
	if client.IsNotFound(err) {
		return apperr.Wrap(apperr.Profile, MsgProfileNotFound, err)
	}
	return apperr.Wrap(apperr.Transport, client.Message(err), err)
}

// transportError wraps any other backend failure with its own message.
func transportError(err error) error {
	return apperr.Wrap(apperr.Transport, client.Message(err), err)
}
