package http

import (
	"bytes"
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/newsletter"
)

const csvContentType = "text/csv; charset=utf-8"

type subscribersInput struct {
	Status newsletter.SubscriberStatus `query:"status" enum:"subscribed,unsubscribed"`
	Search string                      `query:"q"`
	pageQuery
}

type subscribersExportInput struct {
	Status newsletter.SubscriberStatus `query:"status" enum:"subscribed,unsubscribed"`
}

type csvResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type campaignsInput struct {
	Status newsletter.CampaignStatus `query:"status" enum:"draft,scheduled,sending,sent,failed"`
}

type campaignCreateInput struct {
	Body newsletter.CampaignInput
}

type campaignPatchInput struct {
	ID   uint `path:"id"`
	Body newsletter.CampaignPatch
}

func (s *Server) registerNewsletterRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/newsletter/subscribers", "List subscribers", "newsletter", editor), s.listSubscribersHandler)
	huma.Register(s.api, csvOp(adminOp(stdhttp.MethodGet, "/newsletter/subscribers/export", "Export subscribers as CSV", "newsletter", editor)), s.exportSubscribersHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/newsletter/subscribers/{id}", "Delete a subscriber", "newsletter", editor), s.deleteSubscriberHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/newsletter/campaigns", "List campaigns", "newsletter", editor), s.listCampaignsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/newsletter/campaigns", "Create a campaign", "newsletter", editor), s.createCampaignHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/newsletter/campaigns/{id}", "Get a campaign", "newsletter", editor), s.getCampaignHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/newsletter/campaigns/{id}", "Update a campaign", "newsletter", editor), s.updateCampaignHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/newsletter/campaigns/{id}", "Delete a campaign", "newsletter", editor), s.deleteCampaignHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/newsletter/campaigns/{id}/schedule", "Schedule a campaign", "newsletter", editor)), s.scheduleCampaignHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/newsletter/campaigns/{id}/send", "Send a campaign now", "newsletter", editor)), s.sendCampaignHandler)
}

func csvOp(op huma.Operation) huma.Operation {
	op.Responses = map[string]*huma.Response{
		"200": {
			Description: "CSV export",
			Content: map[string]*huma.MediaType{
				csvContentType: {Schema: &huma.Schema{Type: "string"}},
			},
		},
	}
	return op
}

func newCSVResponse(name string, data []byte) *csvResponse {
	return &csvResponse{
		ContentType:        csvContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
		Body:               data,
	}
}

func (s *Server) listSubscribersHandler(ctx context.Context, input *subscribersInput) (*dataOutput[listData[newsletter.Subscriber]], error) {
	subscribers, total, err := s.newsletter.ListSubscribers(ctx, newsletter.SubscriberFilter{
		Status: input.Status,
		Search: input.Search,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, s.fail(ctx, err, "listing subscribers", nil)
	}
	return list(subscribers, total), nil
}

func (s *Server) exportSubscribersHandler(ctx context.Context, input *subscribersExportInput) (*csvResponse, error) {
	subscribers, err := s.newsletter.ExportSubscribers(ctx, input.Status)
	if err != nil {
		return nil, s.fail(ctx, err, "exporting subscribers", nil)
	}

	var buf bytes.Buffer
	if err := newsletter.WriteCSV(&buf, subscribers); err != nil {
		return nil, s.fail(ctx, err, "writing subscribers csv", nil)
	}
	return newCSVResponse("subscribers.csv", buf.Bytes()), nil
}

func (s *Server) deleteSubscriberHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.newsletter.DeleteSubscriber(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting subscriber", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "subscriber deleted"}), nil
}

func (s *Server) listCampaignsHandler(ctx context.Context, input *campaignsInput) (*dataOutput[listData[newsletter.Campaign]], error) {
	campaigns, err := s.newsletter.ListCampaigns(ctx, input.Status)
	if err != nil {
		return nil, s.fail(ctx, err, "listing campaigns", nil)
	}
	return list(campaigns, int64(len(campaigns))), nil
}

func (s *Server) createCampaignHandler(ctx context.Context, input *campaignCreateInput) (*dataOutput[*newsletter.Campaign], error) {
	campaign, err := s.newsletter.CreateCampaign(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating campaign", nil)
	}
	return created(campaign), nil
}

func (s *Server) getCampaignHandler(ctx context.Context, input *idInput) (*dataOutput[*newsletter.Campaign], error) {
	campaign, err := s.newsletter.GetCampaign(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading campaign", logrus.Fields{"id": input.ID})
	}
	return ok(campaign), nil
}

func (s *Server) updateCampaignHandler(ctx context.Context, input *campaignPatchInput) (*dataOutput[*newsletter.Campaign], error) {
	campaign, err := s.newsletter.UpdateCampaign(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating campaign", logrus.Fields{"id": input.ID})
	}
	return ok(campaign), nil
}

func (s *Server) deleteCampaignHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.newsletter.DeleteCampaign(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting campaign", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "campaign deleted"}), nil
}

func (s *Server) scheduleCampaignHandler(ctx context.Context, input *scheduleInput) (*dataOutput[*newsletter.Campaign], error) {
	campaign, err := s.newsletter.ScheduleCampaign(ctx, input.ID, input.Body.ScheduledAt)
	if err != nil {
		return nil, s.fail(ctx, err, "scheduling campaign", logrus.Fields{"id": input.ID})
	}
	return ok(campaign), nil
}

func (s *Server) sendCampaignHandler(ctx context.Context, input *idInput) (*dataOutput[*newsletter.Campaign], error) {
	campaign, err := s.newsletter.SendCampaign(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "sending campaign", logrus.Fields{"id": input.ID})
	}
	return ok(campaign), nil
}
