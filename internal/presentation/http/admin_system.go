package http

import (
	"context"
	"io"
	"mime/multipart"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/ai"
	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/dashboard"
	"eduvista/site/internal/domain/media"
	"eduvista/site/internal/domain/scheduler"
)

// Base64 inflates payloads by a third; leave room for the JSON envelope too.
const maxUploadBodyBytes = int64(media.MaxSize)*4/3 + 64*1024

type userCreateInput struct {
	Body auth.UserInput
}

type auditInput struct {
	Actor string `query:"actor"`
	Path  string `query:"path" doc:"Path prefix"`
	Limit int    `query:"limit" minimum:"1" maximum:"500" default:"100"`
}

type generateInput struct {
	Body ai.GenerateInput
}

type mediaJSONInput struct {
	Body media.UploadInput
}

type mediaFormInput struct {
	RawBody multipart.Form
}

type processInput struct {
	Kind string `path:"kind" enum:"blog,social,newsletter"`
}

func (s *Server) registerSystemRoutes() {
	admin := auth.RoleAdmin
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/users", "List admin users", "users", admin), s.listUsersHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/users", "Create an admin user", "users", admin), s.createUserHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/users/{id}", "Get an admin user", "users", admin), s.getUserHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/users/{id}", "Delete an admin user", "users", admin), s.deleteUserHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/audit", "List audit log entries", "audit", admin), s.listAuditHandler)

	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/ai/generate", "Generate draft content", "ai", editor)), s.generateHandler)

	jsonUpload := adminOp(stdhttp.MethodPost, "/media", "Upload a base64 encoded file", "media", editor)
	jsonUpload.MaxBodyBytes = maxUploadBodyBytes
	huma.Register(s.api, jsonUpload, s.uploadJSONHandler)

	formUpload := adminOp(stdhttp.MethodPost, "/media/upload", "Upload a file as multipart form data", "media", editor)
	formUpload.MaxBodyBytes = maxUploadBodyBytes
	huma.Register(s.api, formUpload, s.uploadFormHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/dashboard", "Dashboard widgets", "dashboard", editor), s.dashboardHandler)

	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/scheduler/process", "Process every scheduled item that is due", "scheduler", editor)), s.processScheduledHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/scheduler/process/{kind}", "Process due items of one kind", "scheduler", editor)), s.processKindHandler)
}

func (s *Server) listUsersHandler(ctx context.Context, _ *struct{}) (*dataOutput[listData[auth.User]], error) {
	users, err := s.auth.ListUsers(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "listing users", nil)
	}
	return list(users, int64(len(users))), nil
}

func (s *Server) createUserHandler(ctx context.Context, input *userCreateInput) (*dataOutput[*auth.User], error) {
	user, err := s.auth.CreateUser(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating user", nil)
	}
	return created(user), nil
}

func (s *Server) getUserHandler(ctx context.Context, input *idInput) (*dataOutput[*auth.User], error) {
	user, err := s.auth.GetUser(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading user", logrus.Fields{"id": input.ID})
	}
	return ok(user), nil
}

func (s *Server) deleteUserHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.auth.DeleteUser(ctx, PrincipalFromContext(ctx), input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting user", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "user deleted"}), nil
}

func (s *Server) listAuditHandler(ctx context.Context, input *auditInput) (*dataOutput[listData[audit.Entry]], error) {
	entries, err := s.audit.List(ctx, audit.Filter{
		ActorEmail: input.Actor,
		PathPrefix: input.Path,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, s.fail(ctx, err, "listing audit entries", nil)
	}
	return list(entries, int64(len(entries))), nil
}

func (s *Server) generateHandler(ctx context.Context, input *generateInput) (*dataOutput[*ai.Result], error) {
	result, err := s.ai.Generate(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "generating content", logrus.Fields{"kind": input.Body.Kind})
	}
	return ok(result), nil
}

func (s *Server) uploadJSONHandler(ctx context.Context, input *mediaJSONInput) (*dataOutput[*media.Asset], error) {
	asset, err := s.media.Upload(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "uploading media", logrus.Fields{"filename": input.Body.Filename})
	}
	return created(asset), nil
}

func (s *Server) uploadFormHandler(ctx context.Context, input *mediaFormInput) (*dataOutput[*media.Asset], error) {
	files := input.RawBody.File["file"]
	if len(files) == 0 {
		return nil, s.fail(ctx, apperr.Invalid("multipart field \"file\" is required"), "uploading media", nil)
	}

	upload, err := readFormFile(files[0])
	if err != nil {
		return nil, s.fail(ctx, err, "reading uploaded file", logrus.Fields{"filename": files[0].Filename})
	}

	asset, err := s.media.Upload(ctx, upload)
	if err != nil {
		return nil, s.fail(ctx, err, "uploading media", logrus.Fields{"filename": upload.Filename})
	}
	return created(asset), nil
}

func readFormFile(header *multipart.FileHeader) (media.UploadInput, error) {
	if header.Size > int64(media.MaxSize) {
		return media.UploadInput{}, apperr.Invalid("file exceeds %d MiB", media.MaxSize>>20)
	}

	file, err := header.Open()
	if err != nil {
		return media.UploadInput{}, eris.Wrap(err, "opening multipart file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(media.MaxSize)+1))
	if err != nil {
		return media.UploadInput{}, eris.Wrap(err, "reading multipart file")
	}
	return media.UploadInput{Filename: header.Filename, Data: data}, nil
}

func (s *Server) dashboardHandler(ctx context.Context, _ *struct{}) (*dataOutput[*dashboard.Snapshot], error) {
	principal := PrincipalFromContext(ctx)
	includeAudit := principal != nil && principal.Role.Allows(auth.RoleAdmin)
	return ok(s.dashboard.Snapshot(ctx, includeAudit)), nil
}

func (s *Server) processScheduledHandler(ctx context.Context, _ *struct{}) (*dataOutput[[]scheduler.Report], error) {
	reports, err := s.scheduler.RunOnce(ctx)
	if err != nil {
		// Every processor still ran; the failing one is visible in the logs.
		s.recordError(ctx, err, "processing scheduled items", nil)
	}
	return ok(reports), nil
}

func (s *Server) processKindHandler(ctx context.Context, input *processInput) (*dataOutput[scheduler.Report], error) {
	report, err := s.scheduler.Process(ctx, input.Kind)
	if err != nil {
		return nil, s.fail(ctx, err, "processing scheduled items", logrus.Fields{"kind": input.Kind})
	}
	return ok(report), nil
}
