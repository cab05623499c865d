package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/middleware"
	"github.com/krishkalaria12/snap-album/repository"
	"gorm.io/datatypes"
)

const internalError = "Internal Server Error"

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// failErr renders err with the status of its kind. NotFoundOrForbidden is a
// 404 here; routes that answer 403 for it use failAs.
func failErr(c *fiber.Ctx, err error) error {
	return failAs(c, err, fiber.StatusNotFound)
}

func failAs(c *fiber.Ctx, err error, notFoundOrForbidden int) error {
	status := fiber.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		status = fiber.StatusUnauthorized
	case apperr.KindForbidden:
		status = fiber.StatusForbidden
	case apperr.KindNotFound:
		status = fiber.StatusNotFound
	case apperr.KindNotFoundOrForbidden:
		status = notFoundOrForbidden
	case apperr.KindConflict:
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return fail(c, status, internalError)
	}
	return fail(c, status, apperr.MessageOf(err, internalError))
}

func principal(c *fiber.Ctx) (access.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return access.Principal{}, apperr.Unauthorized("Unauthorized")
	}
	return p, nil
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + param)
	}
	return uint(id), nil
}

var errInvalidNumber = errors.New("invalid number")

func unquote(data []byte) string {
	s := string(bytes.TrimSpace(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// flexID is a positive id sent either as a JSON number or a numeric string.
type flexID uint

func (id *flexID) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(unquote(data), 10, strconv.IntSize)
	if err != nil || v == 0 {
		return errInvalidNumber
	}
	*id = flexID(v)
	return nil
}

// flexFloat accepts 50.1 as well as "50.1". NaN and infinities are rejected.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(unquote(data), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errInvalidNumber
	}
	*f = flexFloat(v)
	return nil
}

func parseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return datatypes.Date{}, apperr.Validation("Invalid capture date")
	}
	return datatypes.Date(t), nil
}

func parseTimeOfDay(s string) (datatypes.Time, error) {
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, apperr.Validation("Invalid capture time")
}

func coordinate(name string, n repository.Nullable[flexFloat], limit float64) (repository.Nullable[float64], error) {
	switch {
	case !n.Set:
		return repository.Nullable[float64]{}, nil
	case !n.Valid:
		return repository.Null[float64](), nil
	}
	v := float64(n.Value)
	if math.IsNaN(v) || v < -limit || v > limit {
		return repository.Nullable[float64]{}, apperr.Validation(fmt.Sprintf("Invalid %s", name))
	}
	return repository.Some(v), nil
}

func pairsJSON(pairs []repository.Pair, left, right string) []fiber.Map {
	out := make([]fiber.Map, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, fiber.Map{left: p.LeftID, right: p.RightID})
	}
	return out
}
