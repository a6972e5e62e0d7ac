package echoapi

import (
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
)

const imageField = "profileImage"

// idParam reads a positive integer path param. Anything else is a 404.
func idParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func bindPage(ctx echo.Context) (core.PageRequest, error) {
	var req core.PageRequest
	if err := ctx.Bind(&req); err != nil {
		return req, errors.Wrap(err, "binding to PageRequest")
	}
	req.Clean()
	return req, nil
}

// bindUpload reads the optional profile image of a multipart registration.
func bindUpload(ctx echo.Context) (*academic.Upload, error) {
	fh, err := ctx.FormFile(imageField)
	if err != nil {
		if errors.Cause(err) == http.ErrMissingFile || errors.Cause(err) == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading profile image")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening profile image")
	}
	defer f.Close()

	content, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "reading profile image")
	}
	return &academic.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}, nil
}

func created(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusCreated, echo.Map{"message": msg})
}
