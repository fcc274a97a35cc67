package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/experiments"
)

type experimentsInput struct {
	Status experiments.Status `query:"status" enum:"running,completed"`
}

type experimentCreateInput struct {
	Body experiments.ExperimentInput
}

type experimentPatchInput struct {
	ID   uint `path:"id"`
	Body experiments.ExperimentPatch
}

type experimentCompleteInput struct {
	ID   uint `path:"id"`
	Body struct {
		Winner string `json:"winner,omitempty" doc:"Variant to declare; empty uses the analysis result"`
	} `required:"false"`
}

func (s *Server) registerExperimentRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/experiments", "List experiments", "experiments", editor), s.listExperimentsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/experiments", "Create an experiment", "experiments", editor), s.createExperimentHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/experiments/{id}", "Get an experiment", "experiments", editor), s.getExperimentHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/experiments/{id}", "Update an experiment", "experiments", editor), s.updateExperimentHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/experiments/{id}", "Delete an experiment", "experiments", editor), s.deleteExperimentHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/experiments/{id}/analysis", "Analyse an experiment", "experiments", editor), s.analyzeExperimentHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/experiments/{id}/complete", "Complete an experiment", "experiments", editor)), s.completeExperimentHandler)
}

func (s *Server) listExperimentsHandler(ctx context.Context, input *experimentsInput) (*dataOutput[listData[experiments.Experiment]], error) {
	items, err := s.experiments.List(ctx, input.Status)
	if err != nil {
		return nil, s.fail(ctx, err, "listing experiments", nil)
	}
	return list(items, int64(len(items))), nil
}

func (s *Server) createExperimentHandler(ctx context.Context, input *experimentCreateInput) (*dataOutput[*experiments.Experiment], error) {
	experiment, err := s.experiments.Create(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating experiment", nil)
	}
	return created(experiment), nil
}

func (s *Server) getExperimentHandler(ctx context.Context, input *idInput) (*dataOutput[*experiments.Experiment], error) {
	experiment, err := s.experiments.Get(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading experiment", logrus.Fields{"id": input.ID})
	}
	return ok(experiment), nil
}

func (s *Server) updateExperimentHandler(ctx context.Context, input *experimentPatchInput) (*dataOutput[*experiments.Experiment], error) {
	experiment, err := s.experiments.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating experiment", logrus.Fields{"id": input.ID})
	}
	return ok(experiment), nil
}

func (s *Server) deleteExperimentHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.experiments.Delete(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting experiment", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "experiment deleted"}), nil
}

func (s *Server) analyzeExperimentHandler(ctx context.Context, input *idInput) (*dataOutput[*experiments.Analysis], error) {
	analysis, err := s.experiments.Analyze(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "analysing experiment", logrus.Fields{"id": input.ID})
	}
	return ok(analysis), nil
}

func (s *Server) completeExperimentHandler(ctx context.Context, input *experimentCompleteInput) (*dataOutput[*experiments.Experiment], error) {
	experiment, err := s.experiments.Complete(ctx, input.ID, input.Body.Winner)
	if err != nil {
		return nil, s.fail(ctx, err, "completing experiment", logrus.Fields{"id": input.ID})
	}
	return ok(experiment), nil
}
