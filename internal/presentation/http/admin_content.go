package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/content"
)

type pageCreateInput struct {
	Body content.PageInput
}

type pagePatchInput struct {
	ID   uint `path:"id"`
	Body content.PagePatch
}

type sectionCreateInput struct {
	ID   uint `path:"id"`
	Body content.SectionInput
}

type sectionPatchInput struct {
	ID   uint `path:"id"`
	Body content.SectionPatch
}

type testimonialCreateInput struct {
	Body content.TestimonialInput
}

type testimonialPatchInput struct {
	ID   uint `path:"id"`
	Body content.TestimonialPatch
}

func (s *Server) registerContentRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/pages", "List pages", "content", editor), s.listPagesHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/pages", "Create a page", "content", editor), s.createPageHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/pages/{id}", "Get a page", "content", editor), s.getPageHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/pages/{id}", "Update a page", "content", editor), s.updatePageHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/pages/{id}", "Delete a page", "content", editor), s.deletePageHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/pages/{id}/sections", "Add a section to a page", "content", editor), s.addSectionHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/sections/{id}", "Update a section", "content", editor), s.updateSectionHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/sections/{id}", "Delete a section", "content", editor), s.deleteSectionHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/testimonials", "List testimonials", "content", editor), s.listTestimonialsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/testimonials", "Create a testimonial", "content", editor), s.createTestimonialHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/testimonials/{id}", "Update a testimonial", "content", editor), s.updateTestimonialHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/testimonials/{id}", "Delete a testimonial", "content", editor), s.deleteTestimonialHandler)
}

func (s *Server) listPagesHandler(ctx context.Context, _ *struct{}) (*dataOutput[listData[content.Page]], error) {
	pages, err := s.content.ListPages(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "listing pages", nil)
	}
	return list(pages, int64(len(pages))), nil
}

func (s *Server) createPageHandler(ctx context.Context, input *pageCreateInput) (*dataOutput[*content.Page], error) {
	page, err := s.content.CreatePage(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating page", nil)
	}
	return created(page), nil
}

func (s *Server) getPageHandler(ctx context.Context, input *idInput) (*dataOutput[*content.Page], error) {
	page, err := s.content.GetPage(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading page", logrus.Fields{"id": input.ID})
	}
	return ok(page), nil
}

func (s *Server) updatePageHandler(ctx context.Context, input *pagePatchInput) (*dataOutput[*content.Page], error) {
	page, err := s.content.UpdatePage(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating page", logrus.Fields{"id": input.ID})
	}
	return ok(page), nil
}

func (s *Server) deletePageHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.content.DeletePage(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting page", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "page deleted"}), nil
}

func (s *Server) addSectionHandler(ctx context.Context, input *sectionCreateInput) (*dataOutput[*content.Section], error) {
	section, err := s.content.AddSection(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "adding section", logrus.Fields{"page_id": input.ID})
	}
	return created(section), nil
}

func (s *Server) updateSectionHandler(ctx context.Context, input *sectionPatchInput) (*dataOutput[*content.Section], error) {
	section, err := s.content.UpdateSection(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating section", logrus.Fields{"id": input.ID})
	}
	return ok(section), nil
}

func (s *Server) deleteSectionHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.content.DeleteSection(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting section", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "section deleted"}), nil
}

func (s *Server) listTestimonialsHandler(ctx context.Context, input *testimonialsInput) (*dataOutput[listData[content.Testimonial]], error) {
	testimonials, err := s.content.ListTestimonials(ctx, input.Featured)
	if err != nil {
		return nil, s.fail(ctx, err, "listing testimonials", nil)
	}
	return list(testimonials, int64(len(testimonials))), nil
}

func (s *Server) createTestimonialHandler(ctx context.Context, input *testimonialCreateInput) (*dataOutput[*content.Testimonial], error) {
	testimonial, err := s.content.CreateTestimonial(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating testimonial", nil)
	}
	return created(testimonial), nil
}

func (s *Server) updateTestimonialHandler(ctx context.Context, input *testimonialPatchInput) (*dataOutput[*content.Testimonial], error) {
	testimonial, err := s.content.UpdateTestimonial(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating testimonial", logrus.Fields{"id": input.ID})
	}
	return ok(testimonial), nil
}

func (s *Server) deleteTestimonialHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.content.DeleteTestimonial(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting testimonial", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "testimonial deleted"}), nil
}
