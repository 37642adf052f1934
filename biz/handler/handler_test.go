package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"

	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/validator"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&service.ValidationError{Msg: "File ID is required"}, consts.StatusBadRequest},
		{validator.ErrInvalidEmail, consts.StatusBadRequest},
		{service.ErrAlreadySubscribed, consts.StatusBadRequest},
		{service.ErrAlreadyLiked, consts.StatusConflict},
		{fmt.Errorf("load: %w", service.ErrFileNotFound), consts.StatusNotFound},
		{service.ErrNoArchive, consts.StatusNotFound},
		{fetcher.ErrAuthRequired, consts.StatusForbidden},
		{fmt.Errorf("%w: upstream status 500", fetcher.ErrFetchFailed), consts.StatusInternalServerError},
		{fmt.Errorf("%w: example.com", validator.ErrEmailLookup), consts.StatusInternalServerError},
		{errors.New("disk on fire"), consts.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, msg := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, msg)
			if status == consts.StatusInternalServerError {
				assert.NotContains(t, msg, "disk on fire")
			}
		})
	}
}

func TestSitemapPaths(t *testing.T) {
	routes := route.RoutesInfo{
		{Method: consts.MethodGet, Path: "/works"},
		{Method: consts.MethodGet, Path: "/api/hdri"},
		{Method: consts.MethodGet, Path: "/api/hdri/:id"},
		{Method: consts.MethodPost, Path: "/contact"},
		{Method: consts.MethodGet, Path: "/admin/manage_all"},
		{Method: consts.MethodGet, Path: "/administrators-guide"},
		{Method: consts.MethodGet, Path: "/.env"},
		{Method: consts.MethodGet, Path: "/static/*filepath"},
	}
	got := SitemapPaths(routes, []string{"/admin", "/.env"})
	assert.Equal(t, []string{"/administrators-guide", "/api/hdri", "/works"}, got)
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, " 42 ": true, "0": false, "-3": false, "abc": false, "": false} {
		_, ok := parseID(raw)
		assert.Equal(t, want, ok, raw)
	}
}
