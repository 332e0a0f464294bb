package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"orderdesk/internal/domain"
	"orderdesk/internal/http/middleware"
	"orderdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors to HTTP responses. fallback is the
// message used for upstream failures, whose underlying error is passed
// through in "error".
func RespondDomainError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsValidation(err):
		var ve domain.ValidationError
		errors.As(err, &ve)
		payload := gin.H{"message": validationMessage(ve), "request_id": middleware.GetRequestID(c)}
		if ve.Field != "" {
			payload["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, payload)
	case domain.IsNotFound(err):
		var nf domain.NotFoundError
		errors.As(err, &nf)
		RespondError(c, http.StatusNotFound, capitalize(nf.Error()), nil)
	case domain.IsConflict(err):
		var ce domain.ConflictError
		errors.As(err, &ce)
		msg := ce.Msg
		if msg == "" {
			msg = ce.Error()
		}
		RespondError(c, http.StatusConflict, msg, nil)
	case domain.IsForbidden(err):
		var fe domain.ForbiddenError
		errors.As(err, &fe)
		RespondError(c, http.StatusForbidden, fe.Error(), nil)
	case domain.IsInternal(err):
		var ie domain.InternalError
		errors.As(err, &ie)
		action := ie.Msg
		if action == "" {
			action = c.FullPath()
		}
		utils.LogError(middleware.GetRequestID(c), "http", action, err)
		RespondError(c, http.StatusInternalServerError, fallback, err)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
		RespondError(c, http.StatusInternalServerError, fallback, err)
	}
}

func validationMessage(ve domain.ValidationError) string {
	if ve.Msg == "" {
		return ve.Error()
	}
	// Coercer messages are fragments like "must be a number".
	if first, _ := utf8.DecodeRuneInString(ve.Msg); unicode.IsLower(first) && ve.Field != "" {
		return ve.Field + " " + ve.Msg
	}
	return ve.Msg
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
