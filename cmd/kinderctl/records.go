package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/dto"
)

// recordOp decodes a JSON record for module and returns the call that creates
// it, or updates id when id is non-nil.
func recordOp(c *client.Client, module string, id *uuid.UUID, r io.Reader) (func(ctx context.Context) error, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch normalizeModule(module) {
	case "class":
		var req dto.ClassRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			if id == nil {
				return c.CreateClass(ctx, req).Err
			}
			return c.UpdateClass(ctx, *id, req).Err
		}, nil
	case "semester":
		var req dto.SemesterRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			if id == nil {
				return c.CreateSemester(ctx, req).Err
			}
			return c.UpdateSemester(ctx, *id, req).Err
		}, nil
	case "teacher":
		var req dto.TeacherRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			if id == nil {
				return c.CreateTeacher(ctx, req).Err
			}
			return c.UpdateTeacher(ctx, *id, req).Err
		}, nil
	case "student":
		var req dto.StudentRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			if id == nil {
				return c.CreateStudent(ctx, req).Err
			}
			return c.UpdateStudent(ctx, *id, req).Err
		}, nil
	case "news":
		var req dto.NewsRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			if id == nil {
				return c.CreateNews(ctx, req).Err
			}
			return c.UpdateNews(ctx, *id, req).Err
		}, nil
	case "user-accounts":
		if id == nil {
			var req dto.CreateUserAccountRequest
			if err := decodeRecord(raw, &req); err != nil {
				return nil, err
			}
			return func(ctx context.Context) error {
				return c.CreateUserAccount(ctx, req).Err
			}, nil
		}
		var req dto.UpdateUserAccountRequest
		if err := decodeRecord(raw, &req); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return c.UpdateUserAccount(ctx, *id, req).Err
		}, nil
	}
	return nil, fmt.Errorf("unknown module %q", module)
}

// decodeRecord rejects unknown fields.
func decodeRecord(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}
