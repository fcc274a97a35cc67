package http

import (
	"bytes"
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/contact"
)

type submissionsInput struct {
	Kind   contact.Kind   `query:"kind" enum:"contact,quote"`
	Status contact.Status `query:"status" enum:"new,in_progress,resolved,spam"`
	pageQuery
}

type submissionsExportInput struct {
	Kind   contact.Kind   `query:"kind" enum:"contact,quote"`
	Status contact.Status `query:"status" enum:"new,in_progress,resolved,spam"`
}

type submissionStatusInput struct {
	ID   uint `path:"id"`
	Body struct {
		Status contact.Status `json:"status" enum:"new,in_progress,resolved,spam"`
	}
}

func (s *Server) registerContactRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/contact/submissions", "List form submissions", "forms", editor), s.listSubmissionsHandler)
	huma.Register(s.api, csvOp(adminOp(stdhttp.MethodGet, "/contact/submissions/export", "Export form submissions as CSV", "forms", editor)), s.exportSubmissionsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/contact/submissions/{id}", "Get a form submission", "forms", editor), s.getSubmissionHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/contact/submissions/{id}", "Change a submission status", "forms", editor), s.updateSubmissionStatusHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/contact/submissions/{id}", "Delete a form submission", "forms", editor), s.deleteSubmissionHandler)
}

func (s *Server) listSubmissionsHandler(ctx context.Context, input *submissionsInput) (*dataOutput[listData[contact.Submission]], error) {
	submissions, total, err := s.contact.List(ctx, contact.Filter{
		Kind:   input.Kind,
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, s.fail(ctx, err, "listing submissions", nil)
	}
	return list(submissions, total), nil
}

func (s *Server) exportSubmissionsHandler(ctx context.Context, input *submissionsExportInput) (*csvResponse, error) {
	submissions, err := s.contact.Export(ctx, contact.Filter{Kind: input.Kind, Status: input.Status})
	if err != nil {
		return nil, s.fail(ctx, err, "exporting submissions", nil)
	}

	var buf bytes.Buffer
	if err := contact.WriteCSV(&buf, submissions); err != nil {
		return nil, s.fail(ctx, err, "writing submissions csv", nil)
	}
	return newCSVResponse("submissions.csv", buf.Bytes()), nil
}

func (s *Server) getSubmissionHandler(ctx context.Context, input *idInput) (*dataOutput[*contact.Submission], error) {
	submission, err := s.contact.Get(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading submission", logrus.Fields{"id": input.ID})
	}
	return ok(submission), nil
}

func (s *Server) updateSubmissionStatusHandler(ctx context.Context, input *submissionStatusInput) (*dataOutput[*contact.Submission], error) {
	submission, err := s.contact.UpdateStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, s.fail(ctx, err, "updating submission status", logrus.Fields{"id": input.ID})
	}
	return ok(submission), nil
}

func (s *Server) deleteSubmissionHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.contact.Delete(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting submission", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "submission deleted"}), nil
}
