// Package crud registers the five standard REST routes for a resource.
package crud

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/repair-manager/pkg/response"
)

// Middleware wraps a handler, e.g. with a permission check.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Resource describes one entity. Any nil func leaves its route unregistered.
type Resource[I any] struct {
	Label  string
	Create func(context.Context, I) (any, error)
	Get    func(context.Context, uint) (any, error)
	List   func(context.Context) (any, error)
	Update func(context.Context, uint, I) (any, error)
	Delete func(context.Context, uint) error
}

// The adapters erase the entity type so one Register serves every resource.

func CreateFunc[I, T any](f func(context.Context, I) (*T, error)) func(context.Context, I) (any, error) {
	return func(ctx context.Context, in I) (any, error) { return f(ctx, in) }
}

func GetFunc[T any](f func(context.Context, uint) (*T, error)) func(context.Context, uint) (any, error) {
	return func(ctx context.Context, id uint) (any, error) { return f(ctx, id) }
}

func ListFunc[T any](f func(context.Context) ([]T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) { return f(ctx) }
}

func UpdateFunc[I, T any](f func(context.Context, uint, I) (*T, error)) func(context.Context, uint, I) (any, error) {
	return func(ctx context.Context, id uint, in I) (any, error) { return f(ctx, id, in) }
}

// Register mounts GET base, GET base/{id}, POST base, PUT base/{id} and
// DELETE base/{id}. read guards the GET routes, write the others.
func Register[I any](router *mux.Router, base string, instrument func(string, http.HandlerFunc) http.HandlerFunc, read, write Middleware, res Resource[I]) {
	item := base + "/{id}"

	if res.List != nil {
		router.HandleFunc(base, instrument(base, read(func(w http.ResponseWriter, r *http.Request) {
			items, err := res.List(r.Context())
			if err != nil {
				response.Error(w, r, err)
				return
			}
			response.OK(w, items)
		}))).Methods(http.MethodGet)
	}

	if res.Get != nil {
		router.HandleFunc(item, instrument(item, read(func(w http.ResponseWriter, r *http.Request) {
			id, err := response.PathID(r, "id")
			if err != nil {
				response.Error(w, r, err)
				return
			}
			v, err := res.Get(r.Context(), id)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			response.OK(w, v)
		}))).Methods(http.MethodGet)
	}

	if res.Create != nil {
		router.HandleFunc(base, instrument(base, write(func(w http.ResponseWriter, r *http.Request) {
			var in I
			if err := response.Decode(r, &in); err != nil {
				response.Error(w, r, err)
				return
			}
			v, err := res.Create(r.Context(), in)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			response.Created(w, res.Label+" created successfully", v)
		}))).Methods(http.MethodPost)
	}

	if res.Update != nil {
		router.HandleFunc(item, instrument(item, write(func(w http.ResponseWriter, r *http.Request) {
			id, err := response.PathID(r, "id")
			if err != nil {
				response.Error(w, r, err)
				return
			}
			var in I
			if err := response.Decode(r, &in); err != nil {
				response.Error(w, r, err)
				return
			}
			v, err := res.Update(r.Context(), id, in)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			response.JSON(w, http.StatusOK, response.Response{Success: true, Message: res.Label + " updated successfully", Data: v})
		}))).Methods(http.MethodPut)
	}

	if res.Delete != nil {
		router.HandleFunc(item, instrument(item, write(func(w http.ResponseWriter, r *http.Request) {
			id, err := response.PathID(r, "id")
			if err != nil {
				response.Error(w, r, err)
				return
			}
			if err := res.Delete(r.Context(), id); err != nil {
				response.Error(w, r, err)
				return
			}
			response.Message(w, res.Label+" deleted successfully")
		}))).Methods(http.MethodDelete)
	}
}

// Public is a Middleware that adds nothing.
func Public(next http.HandlerFunc) http.HandlerFunc { return next }
