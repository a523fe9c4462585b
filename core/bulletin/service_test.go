package bulletin

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

type fakeSource struct {
	students  map[string]Student
	entries   []grade.Entry
	templates map[string]class.Template
}

func (src *fakeSource) Student(_ context.Context, id string) (Student, error) {
	if s, ok := src.students[id]; ok {
		return s, nil
	}
	return Student{}, user.ErrNotFound
}

func (src *fakeSource) Entries(_ context.Context, studentID, period string) ([]grade.Entry, error) {
	var entries []grade.Entry
	for _, e := range src.entries {
		if e.StudentID == studentID && e.Period == period {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (src *fakeSource) ClassEntries(ctx context.Context, classID, period string) ([]StudentEntries, error) {
	var all []StudentEntries
	for id, s := range src.students {
		if s.ClassID != classID {
			continue
		}
		entries, _ := src.Entries(ctx, id, period)
		all = append(all, StudentEntries{StudentID: id, Entries: entries})
	}
	return all, nil
}

func (src *fakeSource) Template(_ context.Context, classID string) (class.Template, error) {
	if tmpl, ok := src.templates[classID]; ok {
		return tmpl, nil
	}
	return class.Template{}, class.ErrTemplateNotFound
}

func (src *fakeSource) LatestPeriod(_ context.Context, studentID string) (string, error) {
	var latest grade.Entry
	for _, e := range src.entries {
		if e.StudentID == studentID && e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	return latest.Period, nil
}

type fakeStore struct {
	src   *fakeSource
	views int
}

func (st *fakeStore) View(_ context.Context, fn func(src Source) error) error {
	st.views++
	return fn(st.src)
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(b Bulletin, w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	_, err := io.WriteString(w, "%PDF "+b.Student.Username)
	return err
}

type fakeMailer struct {
	sent []*core.EmailMessage
}

func (m *fakeMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T, renderer Renderer) (*Service, *fakeStore, *fakeMailer) {
	t.Helper()
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{
		students: map[string]Student{
			"s1": {ID: "s1", Username: "awa", Email: "awa@test.ml", ClassID: "c1", ClassName: "12e SE"},
			"s2": {ID: "s2", Username: "bakary", ClassID: "c1", ClassName: "12e SE"},
			"s3": {ID: "s3", Username: "lone"},
		},
		entries: []grade.Entry{
			{StudentID: "s1", Subject: "MATHS", ClassAvg: 14, Composition: 15, Coef: 4, Period: "1ère Période", CreatedAt: now},
			{StudentID: "s1", Subject: "MATHS", ClassAvg: 17, Composition: 18, Coef: 4, Period: "2e Période", CreatedAt: now.Add(time.Hour)},
			{StudentID: "s2", Subject: "MATHS", ClassAvg: 18, Composition: 19, Coef: 4, Period: "2e Période", CreatedAt: now},
		},
		templates: map[string]class.Template{
			"c1": {ClassID: "c1", Part1: []string{"MATHS"}, Part2: []string{"EPS"}},
		},
	}
	store := &fakeStore{src: src}
	mailer := &fakeMailer{}
	conf := &core.Config{Bulletin: core.BulletinConfig{MaxConcurrentRenders: 1}}
	return NewService(store, renderer, mailer, DefaultSettings(), conf, nopLogger{}), store, mailer
}

func TestService_Compute(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, fakeRenderer{})

	t.Run("explicit period", func(t *testing.T) {
		b, err := svc.Compute(ctx, "s1", " 1ère Période ")
		require.NoError(t, err)
		assert.Equal(t, "1ère Période", b.Period)
		assert.InDelta(t, MeritGrade(14, 15), b.Average, 1e-9)
		assert.Equal(t, []string{"EPS"}, subjects(b.Part2.Rows))
		assert.Equal(t, "1er/ère", b.Rank.Label(), "s2 has no grade in this period")
	})

	t.Run("latest period", func(t *testing.T) {
		b, err := svc.Compute(ctx, "s1", "")
		require.NoError(t, err)
		assert.Equal(t, "2e Période", b.Period)
		assert.Equal(t, "2e", b.Rank.Label())
		assert.Equal(t, FormatTop(MeritGrade(18, 19)), b.Rank.TopLabel())
	})

	t.Run("fallback period and default sections", func(t *testing.T) {
		b, err := svc.Compute(ctx, "s3", "")
		require.NoError(t, err)
		assert.Equal(t, FallbackPeriod, b.Period)
		assert.Equal(t, UnknownClass, b.Student.ClassName)
		assert.Equal(t, DefaultPart1, subjects(b.Part1.Rows))
		assert.Equal(t, NotAvailable, b.Rank.Label())
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Compute(ctx, "nope", "")
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})

	t.Run("one snapshot per bulletin", func(t *testing.T) {
		before := store.views
		_, err := svc.Compute(ctx, "s1", "")
		require.NoError(t, err)
		assert.Equal(t, before+1, store.views)
	})
}

func TestService_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		svc, _, _ := newTestService(t, fakeRenderer{})
		doc, err := svc.Render(ctx, Bulletin{Student: Student{Username: "awa"}})
		require.NoError(t, err)
		assert.Equal(t, "%PDF awa", string(doc))
	})

	t.Run("render failure", func(t *testing.T) {
		svc, _, _ := newTestService(t, fakeRenderer{err: errors.New("boom")})
		_, err := svc.Render(ctx, Bulletin{})
		require.Error(t, err)
		assert.True(t, IsRenderFailure(err))
		assert.True(t, IsRenderFailure(errors.Wrap(err, "wrapped")))
		assert.False(t, IsRenderFailure(errors.New("other")))
	})

	t.Run("no render slot before ctx is done", func(t *testing.T) {
		svc, _, _ := newTestService(t, fakeRenderer{})
		require.NoError(t, svc.renders.Acquire(ctx, 1))
		defer svc.renders.Release(1)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Render(cctx, Bulletin{})
		require.Error(t, err)
		assert.False(t, IsRenderFailure(err))
	})
}

func TestService_Email(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newTestService(t, fakeRenderer{})

	_, err := svc.Email(ctx, "s2", "")
	assert.Equal(t, ErrNoEmail, err)
	assert.Empty(t, mailer.sent)

	b, err := svc.Email(ctx, "s1", "2e Période")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "awa@test.ml", msg.To[0].Address)
	assert.Equal(t, "bulletin_ready", msg.TemplateName)
	assert.Contains(t, msg.TextContent, "2e Période (12e SE)")
	assert.Contains(t, msg.HTMLContent, "<strong>2e Période</strong>")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, Filename(b), msg.Attachments[0].Filename)
	assert.Equal(t, "report_card_awa.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
}
