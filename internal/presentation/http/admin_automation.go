package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/events"
)

type rulesInput struct {
	Trigger events.Trigger `query:"trigger" enum:"blog.published,newsletter.subscribed,contact.submitted"`
}

type ruleCreateInput struct {
	Body automation.RuleInput
}

type rulePatchInput struct {
	ID   uint `path:"id"`
	Body automation.RulePatch
}

func (s *Server) registerAutomationRoutes() {
	admin := auth.RoleAdmin

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/automation/rules", "List automation rules", "automation", admin), s.listRulesHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/automation/rules", "Create an automation rule", "automation", admin), s.createRuleHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/automation/rules/{id}", "Get an automation rule", "automation", admin), s.getRuleHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/automation/rules/{id}", "Update an automation rule", "automation", admin), s.updateRuleHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/automation/rules/{id}", "Delete an automation rule", "automation", admin), s.deleteRuleHandler)
}

func (s *Server) listRulesHandler(ctx context.Context, input *rulesInput) (*dataOutput[listData[automation.Rule]], error) {
	rules, err := s.automation.ListRules(ctx, input.Trigger)
	if err != nil {
		return nil, s.fail(ctx, err, "listing automation rules", nil)
	}
	return list(rules, int64(len(rules))), nil
}

func (s *Server) createRuleHandler(ctx context.Context, input *ruleCreateInput) (*dataOutput[*automation.Rule], error) {
	rule, err := s.automation.CreateRule(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating automation rule", nil)
	}
	return created(rule), nil
}

func (s *Server) getRuleHandler(ctx context.Context, input *idInput) (*dataOutput[*automation.Rule], error) {
	rule, err := s.automation.GetRule(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading automation rule", logrus.Fields{"id": input.ID})
	}
	return ok(rule), nil
}

func (s *Server) updateRuleHandler(ctx context.Context, input *rulePatchInput) (*dataOutput[*automation.Rule], error) {
	rule, err := s.automation.UpdateRule(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating automation rule", logrus.Fields{"id": input.ID})
	}
	return ok(rule), nil
}

func (s *Server) deleteRuleHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.automation.DeleteRule(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting automation rule", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "rule deleted"}), nil
}
