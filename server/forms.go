package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/baysawarr-web/apiclient"
)

const (
	formDate     = "2006-01-02"
	formDatetime = "2006-01-02T15:04"
)

// fieldErrors maps a form field name to the message shown under it
type fieldErrors map[string]string

func (fe fieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// form field names match the json names of the API models
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates a form model. Decoding errors already collected in fe are kept.
func (s *Server) check(v any, fe fieldErrors) fieldErrors {
	if fe == nil {
		fe = fieldErrors{}
	}
	err := s.validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fe.add(e.Field(), validationMessage(e))
		}
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Ce champ est obligatoire."
	case "email":
		return "Adresse email invalide."
	case "max":
		return fmt.Sprintf("%s caractères maximum.", e.Param())
	case "min":
		return fmt.Sprintf("%s caractères minimum.", e.Param())
	case "len":
		return fmt.Sprintf("Exactement %s caractères.", e.Param())
	case "url":
		return "Adresse web invalide."
	case "gte":
		return fmt.Sprintf("La valeur doit être supérieure ou égale à %s.", e.Param())
	}
	return "Valeur invalide."
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Next     string `json:"next"`
}

func decodeLogin(r *http.Request) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
}

func decodeContact(r *http.Request) (apiclient.Contact, fieldErrors) {
	return apiclient.Contact{
		Name:    text(r, "name"),
		Email:   text(r, "email"),
		Subject: text(r, "subject"),
		Message: text(r, "message"),
	}, nil
}

func decodeEnrollment(r *http.Request) (apiclient.Enrollment, fieldErrors) {
	return apiclient.Enrollment{
		FirstName: text(r, "firstName"),
		LastName:  text(r, "lastName"),
		Email:     text(r, "email"),
		Phone:     text(r, "phone"),
		Company:   text(r, "company"),
		Sector:    text(r, "sector"),
		Country:   text(r, "country"),
		Message:   text(r, "message"),
	}, nil
}

func decodeProduct(r *http.Request) (apiclient.Product, fieldErrors) {
	fe := fieldErrors{}
	p := apiclient.Product{
		Name:        text(r, "name"),
		Description: text(r, "description"),
		Category:    text(r, "category"),
		Currency:    strings.ToUpper(text(r, "currency")),
		Producer:    text(r, "producer"),
		Featured:    r.PostFormValue("featured") == "on",
	}
	p.Price = number(r, "price", fe)
	return p, fe
}

func decodeBlog(r *http.Request) (apiclient.Blog, fieldErrors) {
	fe := fieldErrors{}
	b := apiclient.Blog{
		Title:    text(r, "title"),
		Slug:     text(r, "slug"),
		Excerpt:  text(r, "excerpt"),
		Content:  text(r, "content"),
		Author:   text(r, "author"),
		CoverURL: text(r, "coverUrl"),
	}
	for _, tag := range strings.Split(r.PostFormValue("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			b.Tags = append(b.Tags, tag)
		}
	}
	b.PublishedAt = moment(r, "publishedAt", formDate, fe)
	return b, fe
}

func decodeFormation(r *http.Request) (apiclient.Formation, fieldErrors) {
	fe := fieldErrors{}
	f := apiclient.Formation{
		Title:       text(r, "title"),
		Description: text(r, "description"),
		Trainer:     text(r, "trainer"),
		Location:    text(r, "location"),
	}
	f.StartDate = moment(r, "startDate", formDate, fe)
	f.EndDate = moment(r, "endDate", formDate, fe)
	f.Seats = int(number(r, "seats", fe))
	f.Price = number(r, "price", fe)
	if !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		fe.add("endDate", "La fin doit suivre le début.")
	}
	return f, fe
}

func decodeEvent(r *http.Request) (apiclient.Event, fieldErrors) {
	fe := fieldErrors{}
	e := apiclient.Event{
		Title:           text(r, "title"),
		Description:     text(r, "description"),
		Location:        text(r, "location"),
		ImageURL:        text(r, "imageUrl"),
		RegistrationURL: text(r, "registrationUrl"),
	}
	e.StartsAt = moment(r, "startsAt", formDatetime, fe)
	e.EndsAt = moment(r, "endsAt", formDatetime, fe)
	if !e.EndsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		fe.add("endsAt", "La fin doit suivre le début.")
	}
	return e, fe
}

func text(r *http.Request, field string) string {
	return strings.TrimSpace(r.PostFormValue(field))
}

// number parses an optional numeric field; empty means zero
func number(r *http.Request, field string, fe fieldErrors) float64 {
	raw := text(r, field)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		fe.add(field, "Nombre invalide.")
		return 0
	}
	return n
}

// moment parses an optional date field; empty means the zero time
func moment(r *http.Request, field, layout string, fe fieldErrors) time.Time {
	raw := text(r, field)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(layout, raw, time.Local)
	if err != nil {
		fe.add(field, "Date invalide.")
		return time.Time{}
	}
	return t
}
