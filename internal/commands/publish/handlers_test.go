package publishcmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/publisher"
)

func TestPublishSiteHandlerForwardsOptions(t *testing.T) {
	pageID := uuid.New()
	var captured publisher.BuildOptions
	svc := &fakePublisher{
		buildFunc: func(_ context.Context, opts publisher.BuildOptions) (*publisher.BuildResult, error) {
			captured = opts
			return &publisher.BuildResult{PagesBuilt: 1, DryRun: opts.DryRun}, nil
		},
	}

	var got *publisher.BuildResult
	handler := NewPublishSiteHandler(svc, nil)
	err := handler.Execute(context.Background(), PublishSiteCommand{
		PageIDs:        []uuid.UUID{pageID},
		DryRun:         true,
		ResultCallback: func(result *publisher.BuildResult) { got = result },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !captured.DryRun || len(captured.PageIDs) != 1 || captured.PageIDs[0] != pageID {
		t.Fatalf("unexpected build options %+v", captured)
	}
	if got == nil || got.PagesBuilt != 1 {
		t.Fatalf("expected result callback, got %+v", got)
	}
}

func TestPublishSiteHandlerReportsResultOnFailure(t *testing.T) {
	buildErr := errors.New("page failed")
	svc := &fakePublisher{
		buildFunc: func(context.Context, publisher.BuildOptions) (*publisher.BuildResult, error) {
			return &publisher.BuildResult{Errors: []error{buildErr}}, buildErr
		},
	}

	called := false
	handler := NewPublishSiteHandler(svc, nil)
	err := handler.Execute(context.Background(), PublishSiteCommand{
		ResultCallback: func(*publisher.BuildResult) { called = true },
	})
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error in chain, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !called {
		t.Fatal("expected callback even when the build fails")
	}
}

func TestPublishSiteCommandRejectsNilPageID(t *testing.T) {
	handler := NewPublishSiteHandler(&fakePublisher{}, nil)
	err := handler.Execute(context.Background(), PublishSiteCommand{PageIDs: []uuid.UUID{uuid.Nil}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPublishPageHandler(t *testing.T) {
	pageID := uuid.New()
	var built uuid.UUID
	svc := &fakePublisher{
		buildPageFunc: func(_ context.Context, id uuid.UUID) error {
			built = id
			return nil
		},
	}

	handler := NewPublishPageHandler(svc, nil)
	if err := handler.Execute(context.Background(), PublishPageCommand{PageID: pageID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if built != pageID {
		t.Fatalf("expected page %s to be built, got %s", pageID, built)
	}

	err := handler.Execute(context.Background(), PublishPageCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for missing page id, got %v", err)
	}
}

func TestPreviewPageHandlerWritesOutput(t *testing.T) {
	svc := &fakePublisher{
		previewFunc: func(context.Context, uuid.UUID) (string, error) {
			return "<html>preview</html>", nil
		},
	}

	var html string
	handler := NewPreviewPageHandler(svc, nil)
	err := handler.Execute(context.Background(), PreviewPageCommand{
		PageID: uuid.New(),
		Output: func(doc string) { html = doc },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if html != "<html>preview</html>" {
		t.Fatalf("unexpected preview output %q", html)
	}
}

func TestHandlersWithoutServiceAreDisabled(t *testing.T) {
	err := NewCleanSiteHandler(nil, nil).Execute(context.Background(), CleanSiteCommand{})
	if !errors.Is(err, publisher.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestCleanSiteHandler(t *testing.T) {
	cleaned := false
	svc := &fakePublisher{
		cleanFunc: func(context.Context) error {
			cleaned = true
			return nil
		},
	}
	if err := NewCleanSiteHandler(svc, nil).Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !cleaned {
		t.Fatal("expected clean to be invoked")
	}
}

type fakePublisher struct {
	buildFunc     func(context.Context, publisher.BuildOptions) (*publisher.BuildResult, error)
	buildPageFunc func(context.Context, uuid.UUID) error
	previewFunc   func(context.Context, uuid.UUID) (string, error)
	cleanFunc     func(context.Context) error
}

var _ publisher.Service = (*fakePublisher)(nil)

func (f *fakePublisher) Build(ctx context.Context, opts publisher.BuildOptions) (*publisher.BuildResult, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, opts)
	}
	return &publisher.BuildResult{}, nil
}

func (f *fakePublisher) BuildPage(ctx context.Context, id uuid.UUID) error {
	if f.buildPageFunc != nil {
		return f.buildPageFunc(ctx, id)
	}
	return nil
}

func (f *fakePublisher) Preview(ctx context.Context, id uuid.UUID) (string, error) {
	if f.previewFunc != nil {
		return f.previewFunc(ctx, id)
	}
	return "", nil
}

func (f *fakePublisher) Clean(ctx context.Context) error {
	if f.cleanFunc != nil {
		return f.cleanFunc(ctx)
	}
	return nil
}
