package assembler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"autoblog/internal/config"
	"autoblog/internal/models"
	"autoblog/internal/seo"
	"autoblog/internal/store"
)

type fakeContent struct {
	created   *models.Content
	meta      map[string]string
	featured  uuid.UUID
	slugs     map[string]bool
	createErr error
}

func newFakeContent() *fakeContent {
	return &fakeContent{meta: map[string]string{}, slugs: map[string]bool{}}
}

func (f *fakeContent) UniqueSlug(_ context.Context, base string) (string, error) {
	s := base
	for i := 2; f.slugs[s]; i++ {
		s = fmt.Sprintf("%s-%d", base, i)
	}
	return s, nil
}

func (f *fakeContent) Create(_ context.Context, c *models.Content) (*models.Content, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *c
	cp.ID = uuid.New()
	f.created = &cp
	f.slugs[cp.Slug] = true
	return &cp, nil
}

func (f *fakeContent) SetMeta(_ context.Context, _ uuid.UUID, key, value string) error {
	f.meta[key] = value
	return nil
}

func (f *fakeContent) SetFeaturedImage(_ context.Context, _ uuid.UUID, mediaID uuid.UUID) error {
	f.featured = mediaID
	return nil
}

type fakeCategories struct {
	byName   map[string]*models.Category
	created  []string
	assigned []uuid.UUID
}

func newFakeCategories(existing ...string) *fakeCategories {
	f := &fakeCategories{byName: map[string]*models.Category{}}
	for _, n := range existing {
		f.byName[n] = &models.Category{ID: uuid.New(), Name: n}
	}
	return f
}

func (f *fakeCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	return f.byName[name], nil
}

func (f *fakeCategories) Create(_ context.Context, name, slug string) (*models.Category, error) {
	c := &models.Category{ID: uuid.New(), Name: name, Slug: slug}
	f.byName[name] = c
	f.created = append(f.created, name)
	return c, nil
}

func (f *fakeCategories) Assign(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
	f.assigned = ids
	return nil
}

type fakeTags struct {
	names []string
	err   error
}

func (f *fakeTags) Assign(_ context.Context, _ uuid.UUID, names []string) error {
	f.names = names
	return f.err
}

func sampleArticle() models.Article {
	return models.Article{
		Title:           "Brewing Better Coffee",
		Content:         "<h2>Beans</h2><p>Pick fresh beans.</p>",
		Excerpt:         "Pick fresh beans.",
		MetaDescription: "How to brew better coffee at home.",
		Tags:            []string{"coffee", "brewing"},
		Categories:      []string{"Food", "Lifestyle"},
		FocusKeyword:    "coffee",
	}
}

type fixture struct {
	content    *fakeContent
	categories *fakeCategories
	tags       *fakeTags
	asm        *Assembler
}

func newFixture(opts Options, existing ...string) fixture {
	f := fixture{
		content:    newFakeContent(),
		categories: newFakeCategories(existing...),
		tags:       &fakeTags{},
	}
	f.asm = New(f.content, f.categories, f.tags, uuid.New(), opts)
	return f
}

func TestAssembleHTML(t *testing.T) {
	f := newFixture(Options{Policy: config.PublishDraft, SEOEnabled: true}, "Food")
	mediaID := uuid.New()

	id, err := f.asm.Assemble(context.Background(), sampleArticle(), &ImageHandle{MediaID: mediaID, URL: "https://cdn.example.com/beans.jpg"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	doc := f.content.created
	if doc == nil || doc.ID != id {
		t.Fatalf("document not created or id mismatch")
	}
	if doc.Title != "Brewing Better Coffee" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Slug != "brewing-better-coffee" {
		t.Errorf("Slug = %q", doc.Slug)
	}
	if doc.Status != models.PostStatusDraft {
		t.Errorf("Status = %q, want draft", doc.Status)
	}
	if doc.PublishedAt != nil {
		t.Error("draft must not carry published_at")
	}
	if !strings.Contains(doc.Body, "<h2>Beans</h2>") {
		t.Errorf("Body = %q", doc.Body)
	}
	if doc.Excerpt == nil || *doc.Excerpt != "Pick fresh beans." {
		t.Errorf("Excerpt = %v", doc.Excerpt)
	}
	if f.content.featured != mediaID {
		t.Errorf("featured image = %v, want %v", f.content.featured, mediaID)
	}
	if f.content.meta[store.GeneratedMetaKey] != "1" {
		t.Error("generated marker missing")
	}
	if f.content.meta[seo.MetaDescriptionKey] != "How to brew better coffee at home." {
		t.Errorf("meta description = %q", f.content.meta[seo.MetaDescriptionKey])
	}
	if f.content.meta[seo.FocusKeywordKey] != "coffee" {
		t.Errorf("focus keyword = %q", f.content.meta[seo.FocusKeywordKey])
	}
	head := f.content.meta[seo.HeadTagsKey]
	for _, want := range []string{
		`<meta property="og:title" content="Brewing Better Coffee"/>`,
		`<meta property="og:image" content="https://cdn.example.com/beans.jpg"/>`,
	} {
		if !strings.Contains(head, want) {
			t.Errorf("head tags missing %s in %q", want, head)
		}
	}
	if len(f.categories.created) != 1 || f.categories.created[0] != "Lifestyle" {
		t.Errorf("created categories = %v, want [Lifestyle]", f.categories.created)
	}
	if len(f.categories.assigned) != 2 {
		t.Errorf("assigned %d categories, want 2", len(f.categories.assigned))
	}
	if strings.Join(f.tags.names, ",") != "coffee,brewing" {
		t.Errorf("tags = %v", f.tags.names)
	}
}

func TestAssembleMarkdown(t *testing.T) {
	f := newFixture(Options{Policy: config.PublishDraft})
	art := sampleArticle()
	art.Content = "## Beans\n\nPick **fresh** beans."

	if _, err := f.asm.Assemble(context.Background(), art, nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	body := f.content.created.Body
	if !strings.Contains(body, "<h2") || !strings.Contains(body, "<strong>fresh</strong>") {
		t.Errorf("markdown not rendered: %q", body)
	}
}

func TestAssemblePublishPolicy(t *testing.T) {
	tests := []struct {
		policy config.PublishPolicy
		want   models.PostStatus
	}{
		{config.PublishDraft, models.PostStatusDraft},
		{config.PublishNow, models.PostStatusPublish},
		{config.PublishPending, models.PostStatusPending},
		{"", models.PostStatusDraft},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			f := newFixture(Options{Policy: tt.policy})
			if _, err := f.asm.Assemble(context.Background(), sampleArticle(), nil); err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			doc := f.content.created
			if doc.Status != tt.want {
				t.Errorf("Status = %q, want %q", doc.Status, tt.want)
			}
			if (doc.PublishedAt != nil) != (tt.want == models.PostStatusPublish) {
				t.Errorf("PublishedAt = %v for status %q", doc.PublishedAt, doc.Status)
			}
		})
	}
}

func TestAssembleSEODisabled(t *testing.T) {
	f := newFixture(Options{SEOEnabled: false})
	if _, err := f.asm.Assemble(context.Background(), sampleArticle(), nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, ok := f.content.meta[seo.MetaDescriptionKey]; ok {
		t.Error("meta description written with SEO disabled")
	}
	if f.content.featured != uuid.Nil {
		t.Error("featured image set without image handle")
	}
}

func TestAssembleIncomplete(t *testing.T) {
	tests := []struct {
		name string
		art  models.Article
	}{
		{"no title", models.Article{Content: "body"}},
		{"no content", models.Article{Title: "Title"}},
		{"blank title", models.Article{Title: "  \n", Content: "body"}},
		{"markup-only title", models.Article{Title: "<b></b>", Content: "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})
			_, err := f.asm.Assemble(context.Background(), tt.art, nil)
			if !errors.Is(err, ErrIncompleteArticle) {
				t.Fatalf("err = %v, want ErrIncompleteArticle", err)
			}
			if f.content.created != nil {
				t.Error("document created for incomplete article")
			}
		})
	}
}

func TestAssemblePersistenceError(t *testing.T) {
	f := newFixture(Options{})
	f.content.createErr = errors.New("connection refused")

	_, err := f.asm.Assemble(context.Background(), sampleArticle(), nil)
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PersistenceError", err)
	}
	if pe.Op != "create document" {
		t.Errorf("Op = %q", pe.Op)
	}
}

func TestAssembleTagFailureIsNotFatal(t *testing.T) {
	f := newFixture(Options{})
	f.tags.err = errors.New("tag table locked")
	if _, err := f.asm.Assemble(context.Background(), sampleArticle(), nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
}

func TestAssembleUniqueSlug(t *testing.T) {
	f := newFixture(Options{})
	for i := 0; i < 2; i++ {
		if _, err := f.asm.Assemble(context.Background(), sampleArticle(), nil); err != nil {
			t.Fatalf("Assemble: %v", err)
		}
	}
	if f.content.created.Slug != "brewing-better-coffee-2" {
		t.Errorf("second slug = %q", f.content.created.Slug)
	}
}

func TestAssembleDefaultCategories(t *testing.T) {
	f := newFixture(Options{DefaultCategories: []string{"Tech", "News"}})
	art := sampleArticle()
	art.Categories = []string{models.UncategorizedName}

	if _, err := f.asm.Assemble(context.Background(), art, nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Join(f.categories.created, ",") != "Tech,News" {
		t.Errorf("created = %v, want [Tech News]", f.categories.created)
	}
}

func TestSetOptions(t *testing.T) {
	f := newFixture(Options{Policy: config.PublishDraft})
	f.asm.SetOptions(OptionsFrom(config.Generation{AutoPublish: config.PublishNow, SEOEnabled: true}))
	if _, err := f.asm.Assemble(context.Background(), sampleArticle(), nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if f.content.created.Status != models.PostStatusPublish {
		t.Errorf("Status = %q after SetOptions", f.content.created.Status)
	}
}

func TestResolveCategoryNames(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		defaults   []string
		want       string
	}{
		{"article categories kept", []string{"Food", "Food", " Travel "}, []string{"Tech"}, "Food,Travel"},
		{"sentinel replaced by defaults", []string{"Uncategorized"}, []string{"Tech"}, "Tech"},
		{"empty replaced by defaults", nil, []string{"Tech"}, "Tech"},
		{"sentinel kept without defaults", []string{"Uncategorized"}, nil, "Uncategorized"},
		{"empty without defaults", nil, nil, "Uncategorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(ResolveCategoryNames(tt.categories, tt.defaults), ",")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapContent(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"object with content", `{"content": "<p>inner</p>"}`, "<p>inner</p>"},
		{"json string", `"## Heading"`, "## Heading"},
		{"object without content", `{"body": "x"}`, `{"body": "x"}`},
		{"plain text", "Just text", "Just text"},
		{"broken json", `{"content": `, `{"content": `},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnwrapContent(tt.in); got != tt.want {
				t.Errorf("UnwrapContent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderBodySanitizes(t *testing.T) {
	got, err := RenderBody(`<p onclick="x()">hi</p><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("RenderBody: %v", err)
	}
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Errorf("unsafe markup kept: %q", got)
	}
	if !strings.Contains(got, "<p>hi</p>") {
		t.Errorf("RenderBody = %q", got)
	}
}
