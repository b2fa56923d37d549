package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/listing"
)

// screen is the part of a listing.Controller the commands use, with the
// item type erased.
type screen interface {
	Load(ctx context.Context) error
	Search(term string)
	Filter(key, value string) error
	Paginate(page, pageSize int)
	Page() int
	PageCount() int
	FilteredCount() int
	Header() []string
	VisibleRows() [][]string
	Export(w io.Writer) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Mutate(ctx context.Context, what string, op func(ctx context.Context) error) error
}

var moduleNames = []string{"class", "semester", "teacher", "student", "news", "user-accounts"}

// normalizeModule accepts plurals and a few spellings of each module.
func normalizeModule(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "classes":
		return "class"
	case "semesters":
		return "semester"
	case "teachers":
		return "teacher"
	case "students":
		return "student"
	case "user-account", "user_accounts", "users", "user":
		return "user-accounts"
	}
	return name
}

func (a *app) openScreen(c *client.Client, name string, opts listing.Options) (screen, error) {
	switch normalizeModule(name) {
	case "class":
		return listing.Classes(c, opts), nil
	case "semester":
		return listing.Semesters(c, opts), nil
	case "teacher":
		return listing.Teachers(c, opts), nil
	case "student":
		return listing.Students(c, opts), nil
	case "news":
		return listing.News(c, opts), nil
	case "user-accounts":
		return listing.UserAccounts(c, opts), nil
	}
	return nil, fmt.Errorf("unknown module %q, expected one of: %s", name, strings.Join(moduleNames, ", "))
}
