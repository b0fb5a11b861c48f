package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"multiverse-identity/backend/internal/cache"
	"multiverse-identity/backend/internal/models"
	"multiverse-identity/backend/internal/persona"
	"multiverse-identity/backend/internal/repository"
	"multiverse-identity/backend/internal/reveal"
	apperrors "multiverse-identity/backend/pkg/errors"
	"multiverse-identity/backend/pkg/logger"
	"multiverse-identity/backend/pkg/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("multiverse-identity/service")

// Metrics receives generation measurements
type Metrics interface {
	PersonaGenerated(ctx context.Context, universe string)
	RunCompleted(ctx context.Context, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) PersonaGenerated(context.Context, string)      {}
func (noopMetrics) RunCompleted(context.Context, time.Duration) {}

// Limits bounds request sizes and history queries
type Limits struct {
	MaxNameLength   int
	MaxTraitsLength int
	HistoryLimit    int
}

// Deps are the collaborators of PersonaService. Repo and Breaker are
// optional; without a repository runs live only in the cache.
type Deps struct {
	Generator *persona.Generator
	Repo      repository.RunRepository
	Cache     cache.RunCache
	Breaker   *resilience.CircuitBreaker
	Metrics   Metrics
	Logger    *logger.Logger
}

type PersonaService struct {
	generator *persona.Generator
	repo      repository.RunRepository
	cache     cache.RunCache
	breaker   *resilience.CircuitBreaker
	metrics   Metrics
	limits    Limits
	log       *logger.Logger

	now   func() time.Time
	newID func() string
}

func NewPersonaService(deps Deps, limits Limits) *PersonaService {
	s := &PersonaService{
		generator: deps.Generator,
		repo:      deps.Repo,
		cache:     deps.Cache,
		breaker:   deps.Breaker,
		metrics:   deps.Metrics,
		limits:    limits,
		log:       deps.Logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if s.generator == nil {
		s.generator = persona.NewGenerator()
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.log == nil {
		s.log = logger.GetGlobal()
	}
	if s.limits.HistoryLimit <= 0 {
		s.limits.HistoryLimit = 50
	}
	return s
}

// Validate trims the request and checks it against the configured limits
func (s *PersonaService) Validate(req models.GenerateRequest) (models.GenerateRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Traits = strings.TrimSpace(req.Traits)

	if req.Name == "" {
		return req, apperrors.NameRequired()
	}
	if s.limits.MaxNameLength > 0 && utf8.RuneCountInString(req.Name) > s.limits.MaxNameLength {
		return req, apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, "Name is too long",
			map[string]int{"max_length": s.limits.MaxNameLength})
	}
	if s.limits.MaxTraitsLength > 0 && utf8.RuneCountInString(req.Traits) > s.limits.MaxTraitsLength {
		return req, apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, "Traits are too long",
			map[string]int{"max_length": s.limits.MaxTraitsLength})
	}
	return req, nil
}

// GenerateAll produces one persona per universe, in reveal order, and records the run
func (s *PersonaService) GenerateAll(ctx context.Context, req models.GenerateRequest) (*models.Run, error) {
	req, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PersonaService.GenerateAll")
	defer span.End()

	start := s.now()
	run := &models.Run{
		ID:        s.newID(),
		BaseName:  req.Name,
		Traits:    req.Traits,
		CreatedAt: start.UTC(),
	}
	span.SetAttributes(attribute.String("run.id", run.ID))

	for i, t := range persona.Themes() {
		p := s.card(req, t, t.Info().Label)
		p.Position = i
		run.Personas = append(run.Personas, p)
		s.metrics.PersonaGenerated(ctx, t.Info().Slug)
	}
	s.metrics.RunCompleted(ctx, s.now().Sub(start))

	log := s.log.WithRunID(run.ID)
	s.remember(ctx, log, run)
	s.persist(ctx, log, run)

	log.Info("Generated personas", "universes", len(run.Personas))
	return run, nil
}

// GenerateOne produces a single persona for the named universe. A name that
// is not a known universe gets the fallback profile labelled as given.
func (s *PersonaService) GenerateOne(ctx context.Context, req models.GenerateRequest, universe string) (models.Persona, error) {
	req, err := s.Validate(req)
	if err != nil {
		return models.Persona{}, err
	}

	t, ok := persona.ParseTheme(universe)
	label := universe
	slug := "unknown"
	if ok {
		label = t.Info().Label
		slug = t.Info().Slug
	}

	p := s.card(req, t, label)
	s.metrics.PersonaGenerated(ctx, slug)
	return p, nil
}

// Reveal generates a full run and then emits its personas one at a time,
// delay apart. The channel closes after the last persona or when ctx ends.
func (s *PersonaService) Reveal(ctx context.Context, req models.GenerateRequest, delay time.Duration) (*models.Run, <-chan models.Persona, error) {
	run, err := s.GenerateAll(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	ch := reveal.Stagger(ctx, len(run.Personas), delay, func(i int) models.Persona {
		return run.Personas[i]
	})
	return run, ch, nil
}

// GetRun returns a run from the cache, falling back to the repository
func (s *PersonaService) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if s.cache != nil {
		run, err := s.cache.Get(ctx, id)
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("Run cache lookup failed", "run_id", id, "error", err.Error())
		}
	}

	if s.repo == nil {
		return nil, runNotFound(id)
	}

	run, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRunNotFound) {
		return nil, runNotFound(id)
	}
	if err != nil {
		return nil, apperrors.FromError(err)
	}

	s.remember(ctx, s.log.WithRunID(id), run)
	return run, nil
}

// ListRuns returns the most recent runs, newest first. limit is clamped to
// the configured history limit.
func (s *PersonaService) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if s.repo == nil {
		return nil, apperrors.NewNotFoundError(apperrors.CodeHistoryDisabled, "Run history is disabled")
	}
	if limit <= 0 || limit > s.limits.HistoryLimit {
		limit = s.limits.HistoryLimit
	}

	runs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.FromError(err)
	}
	return runs, nil
}

// Catalog lists the universes in reveal order
func (s *PersonaService) Catalog() []models.Universe {
	themes := persona.Themes()
	out := make([]models.Universe, 0, len(themes))
	for _, t := range themes {
		info := t.Info()
		out = append(out, models.Universe{Name: info.Label, Slug: info.Slug, Icon: info.Icon, Color: info.Color})
	}
	return out
}

func (s *PersonaService) card(req models.GenerateRequest, t persona.ThemeID, label string) models.Persona {
	profile := s.generator.Generate(req.Name, req.Traits, t)
	info := t.Info()
	return models.Persona{
		Universe:    label,
		Name:        profile.Name,
		Description: profile.Description,
		Backstory:   profile.Backstory,
		Icon:        info.Icon,
		Color:       info.Color,
	}
}

func (s *PersonaService) remember(ctx context.Context, log *logger.Logger, run *models.Run) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, run); err != nil {
		log.Warn("Failed to cache run", "error", err.Error())
	}
}

// persist writes the run to the repository. Failures are logged only;
// the caller already has its personas.
func (s *PersonaService) persist(ctx context.Context, log *logger.Logger, run *models.Run) {
	if s.repo == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	write := func(ctx context.Context) error { return s.repo.Create(ctx, run) }
	var err error
	if s.breaker != nil {
		err = s.breaker.ExecuteContext(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		log.LogError(err, "Failed to persist run")
		trace.SpanFromContext(ctx).SetStatus(codes.Error, "persist failed")
	}
}

func runNotFound(id string) error {
	return apperrors.NewNotFoundError(apperrors.CodeRunNotFound, fmt.Sprintf("Run %s not found", id))
}
