package bulletin

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
)

var (
	ErrNoEmail = errors.New("student has no email address")

	NowFunc = time.Now // mockable

	defaultMaxRenders = 4
)

type (
	// Source reads the records a bulletin is computed from.
	Source interface {
		// Student returns user.ErrNotFound or user.ErrNotAStudent for unknown students.
		Student(ctx context.Context, id string) (Student, error)
		// Entries returns the grades of a student for a period, ordered by subject then creation time.
		Entries(ctx context.Context, studentID, period string) ([]grade.Entry, error)
		// ClassEntries returns the grades of every student of a class for a period.
		ClassEntries(ctx context.Context, classID, period string) ([]StudentEntries, error)
		// Template returns class.ErrTemplateNotFound when the class has none.
		Template(ctx context.Context, classID string) (class.Template, error)
		// LatestPeriod returns the period of the most recent grade of a student, "" if none.
		LatestPeriod(ctx context.Context, studentID string) (string, error)
	}

	// Store runs fn against one consistent snapshot of the records.
	Store interface {
		View(ctx context.Context, fn func(src Source) error) error
	}

	Renderer interface {
		Render(b Bulletin, w io.Writer) error
	}

	ServiceInterface interface {
		Compute(ctx context.Context, studentID, period string) (Bulletin, error)
		Render(ctx context.Context, b Bulletin) ([]byte, error)
		Email(ctx context.Context, studentID, period string) (Bulletin, error)
	}

	Service struct {
		store    Store
		renderer Renderer
		mailSvc  core.EmailService
		settings Settings
		renders  *semaphore.Weighted
		conf     *core.Config
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	store Store,
	renderer Renderer,
	mailSvc core.EmailService,
	settings Settings,
	conf *core.Config,
	logger core.Logger,
) *Service {
	maxRenders := conf.Bulletin.MaxConcurrentRenders
	if maxRenders <= 0 {
		maxRenders = defaultMaxRenders
	}
	return &Service{
		store:    store,
		renderer: renderer,
		mailSvc:  mailSvc,
		settings: settings,
		renders:  semaphore.NewWeighted(int64(maxRenders)),
		conf:     conf,
		logger:   logger,
	}
}

// Compute builds the bulletin of a student. An empty period resolves to the period of the
// student's latest grade, then to FallbackPeriod. All reads share one snapshot.
func (svc *Service) Compute(ctx context.Context, studentID, period string) (Bulletin, error) {
	var in Input
	err := svc.store.View(ctx, func(src Source) error {
		student, err := src.Student(ctx, studentID)
		if err != nil {
			return err
		}
		in.Student = student

		in.Period = core.CleanString(period)
		if in.Period == "" {
			if in.Period, err = src.LatestPeriod(ctx, studentID); err != nil {
				return errors.Wrap(err, "getting latest period")
			}
		}
		if in.Period == "" {
			in.Period = FallbackPeriod
		}

		if in.Entries, err = src.Entries(ctx, studentID, in.Period); err != nil {
			return errors.Wrap(err, "getting entries")
		}

		if student.ClassID != "" {
			tmpl, err := src.Template(ctx, student.ClassID)
			switch {
			case err == nil:
				in.Template = &tmpl
			case err != class.ErrTemplateNotFound:
				return errors.Wrap(err, "getting template")
			}
			if in.Classmates, err = src.ClassEntries(ctx, student.ClassID, in.Period); err != nil {
				return errors.Wrap(err, "getting class entries")
			}
		}
		return nil
	})
	if err != nil {
		return Bulletin{}, err
	}

	in.GeneratedAt = NowFunc()
	return svc.settings.Compose(in), nil
}

// Render renders the bulletin document. Concurrent renders are bounded; waiting for a slot honors ctx.
func (svc *Service) Render(ctx context.Context, b Bulletin) ([]byte, error) {
	if err := svc.renders.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for a render slot")
	}
	defer svc.renders.Release(1)

	var buf bytes.Buffer
	if err := svc.renderer.Render(b, &buf); err != nil {
		return nil, NewRenderError(err)
	}
	return buf.Bytes(), nil
}

// Email sends the rendered bulletin to the student's email address.
func (svc *Service) Email(ctx context.Context, studentID, period string) (Bulletin, error) {
	b, err := svc.Compute(ctx, studentID, period)
	if err != nil {
		return Bulletin{}, err
	}
	if b.Student.Email == "" {
		return b, ErrNoEmail
	}
	doc, err := svc.Render(ctx, b)
	if err != nil {
		return b, err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: b.Student.Name, Address: b.Student.Email}},
		Subject:      "Bulletin de notes - " + b.Period,
		TemplateName: "bulletin_ready",
		TemplateData: map[string]string{
			"Name":         b.Student.PrintedName(),
			"Period":       b.Period,
			"ClassName":    b.Student.ClassName,
			"Average":      FormatAverage(b.Average),
			"Appreciation": b.Appreciation,
			"Rank":         b.Rank.Label(),
		},
	}
	if err = msg.Attach(bytes.NewReader(doc), Filename(b), "application/pdf"); err != nil {
		return b, errors.Wrap(err, "attaching bulletin")
	}
	// template errors must reach the caller, sending is async
	if err = msg.Render(svc.conf); err != nil {
		return b, errors.Wrap(err, "preparing bulletin email")
	}
	svc.mailSvc.SendMessages(msg)
	svc.logger.Info("bulletin queued for " + b.Student.Email)
	return b, nil
}

// Filename is the download name of a bulletin document.
func Filename(b Bulletin) string {
	return "report_card_" + b.Student.Username + ".pdf"
}

// RenderError reports a failure while producing the bulletin document.
type RenderError struct {
	Err error
}

func NewRenderError(err error) error {
	return &RenderError{Err: err}
}

func (e *RenderError) Error() string {
	return "rendering bulletin: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsRenderFailure reports whether err is (or wraps) a RenderError.
func IsRenderFailure(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}
