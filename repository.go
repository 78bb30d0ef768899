package userstyle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-userstyle/pkg/activity"
)

// RepositoryOption configures a StyleRepository.
type RepositoryOption func(*repositoryConfig)

type repositoryConfig struct {
	logger   Logger
	hooks    activity.Hooks
	activity activity.Config
	identity activity.StyleEventInput
	initial  *UserStyle
}

// WithRepositoryLogger records accepted and rejected updates.
func WithRepositoryLogger(logger Logger) RepositoryOption {
	return func(cfg *repositoryConfig) {
		cfg.logger = logger
	}
}

// WithActivityHooks emits userstyle.updated and userstyle.rejected events.
// Emission is enabled unless WithActivityConfig turns it off.
func WithActivityHooks(hooks activity.Hooks) RepositoryOption {
	normalized := hooks.Clone()
	return func(cfg *repositoryConfig) {
		cfg.hooks = normalized
		if len(normalized) > 0 {
			cfg.activity.Enabled = true
		}
	}
}

// WithActivityConfig overrides the emitter configuration.
func WithActivityConfig(config activity.Config) RepositoryOption {
	return func(cfg *repositoryConfig) {
		cfg.activity = config
	}
}

// WithActivityIdentity sets the actor and object fields stamped on every
// event. Schema, Changed and ErrorCode are filled per update.
func WithActivityIdentity(input activity.StyleEventInput) RepositoryOption {
	return func(cfg *repositoryConfig) {
		cfg.identity = input
	}
}

// WithInitialStyle seeds the repository instead of the schema defaults.
func WithInitialStyle(style *UserStyle) RepositoryOption {
	return func(cfg *repositoryConfig) {
		cfg.initial = style
	}
}

// StyleRepository holds the current style of one watch face. Reads are lock
// free; updates are serialised, validated and replace the whole style.
// Subscribers only observe the latest value.
type StyleRepository struct {
	schema  *UserStyleSchema
	current atomic.Pointer[UserStyle]

	writeMu sync.Mutex

	subMu       sync.Mutex
	subscribers map[uint64]func(*UserStyle)
	nextSub     uint64

	logger   Logger
	emitter  *activity.Emitter
	identity activity.StyleEventInput
}

// NewStyleRepository creates a repository for schema.
func NewStyleRepository(schema *UserStyleSchema, opts ...RepositoryOption) (*StyleRepository, error) {
	if schema == nil {
		return nil, newValidationError(ErrCodeMissingField, "", "schema is required")
	}
	cfg := repositoryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	repo := &StyleRepository{
		schema:      schema,
		subscribers: map[uint64]func(*UserStyle){},
		logger:      loggerOrNoop(cfg.logger),
		emitter:     activity.NewEmitter(cfg.hooks, cfg.activity),
		identity:    cfg.identity,
	}
	initial := schema.DefaultStyle()
	if cfg.initial != nil {
		if err := repo.validate(cfg.initial); err != nil {
			return nil, err
		}
		initial = cfg.initial
	}
	repo.current.Store(initial)
	return repo, nil
}

// Schema returns the schema every accepted style belongs to.
func (r *StyleRepository) Schema() *UserStyleSchema { return r.schema }

// Current returns the latest accepted style.
func (r *StyleRepository) Current() *UserStyle { return r.current.Load() }

// Update replaces the current style. Every selection must reference a setting
// instance of the schema with an option of the same kind; otherwise the whole
// update is rejected and the current style is unchanged.
func (r *StyleRepository) Update(ctx context.Context, style *UserStyle) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.validate(style); err != nil {
		r.reject(ctx, err, time.Since(start))
		return err
	}

	previous := r.current.Load()
	changed := changedSettings(previous, style)
	if len(changed) == 0 && previous.Len() == style.Len() {
		return nil
	}
	r.current.Store(style)
	r.publish(style)

	input := r.identity
	input.Schema = r.schema.Fingerprint()
	input.Changed = changed
	emitErr := r.emitter.Emit(ctx, activity.BuildStyleUpdatedEvent(input))
	r.logger.LogEvent(LogEvent{
		Component: "repository",
		Message:   "style updated",
		Fields:    map[string]any{"changed": changed, "schema": input.Schema},
		Err:       emitErr,
		Duration:  time.Since(start),
	})
	return nil
}

// UpdateData resolves data against the schema and stores the result.
func (r *StyleRepository) UpdateData(ctx context.Context, data UserStyleData) error {
	return r.Update(ctx, NewUserStyleFromData(data, r.schema))
}

// Edit applies fn to a staging copy of the current style and stores it when
// fn succeeds.
func (r *StyleRepository) Edit(ctx context.Context, fn func(*MutableUserStyle) error) error {
	staged := r.Current().Mutable()
	if err := fn(staged); err != nil {
		var validation *ValidationError
		if errors.As(err, &validation) {
			r.reject(ctx, err, 0)
		}
		return err
	}
	return r.Update(ctx, staged.ToUserStyle())
}

// Subscribe registers fn and calls it synchronously with the current style,
// then once per accepted change. fn must not call Update. The returned
// function removes the subscription.
func (r *StyleRepository) Subscribe(fn func(*UserStyle)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	r.writeMu.Lock()
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	r.subMu.Unlock()
	fn(r.current.Load())
	r.writeMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subscribers, id)
			r.subMu.Unlock()
		})
	}
}

func (r *StyleRepository) publish(style *UserStyle) {
	r.subMu.Lock()
	ids := make([]uint64, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(*UserStyle), len(ids))
	for i, id := range ids {
		fns[i] = r.subscribers[id]
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(style)
	}
}

func (r *StyleRepository) validate(style *UserStyle) error {
	if style == nil {
		return newValidationError(ErrCodeUnknownSetting, "", "style is nil")
	}
	var err error
	style.Range(func(setting Setting, option Option) bool {
		if !r.schema.Contains(setting) {
			err = newValidationError(ErrCodeUnknownSetting, string(setting.ID()), "setting is not part of the schema")
			return false
		}
		if option == nil || option.Kind() != setting.Kind() {
			err = checkAssignment(setting, option)
			return false
		}
		return true
	})
	return err
}

func (r *StyleRepository) reject(ctx context.Context, err error, duration time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	input := r.identity
	input.Schema = r.schema.Fingerprint()
	input.ErrorCode = string(CodeOf(err))
	emitErr := r.emitter.Emit(ctx, activity.BuildStyleRejectedEvent(input))
	r.logger.LogEvent(LogEvent{
		Component: "repository",
		Message:   "style rejected",
		Fields:    map[string]any{"code": input.ErrorCode, "schema": input.Schema},
		Err:       errors.Join(err, emitErr),
		Duration:  duration,
	})
}

// changedSettings lists ids whose selection differs between two styles.
func changedSettings(before, after *UserStyle) []string {
	var changed []string
	after.Range(func(setting Setting, option Option) bool {
		prev, ok := before.GetByID(setting.ID())
		if !ok || prev.key() != option.key() {
			changed = append(changed, string(setting.ID()))
		}
		return true
	})
	sort.Strings(changed)
	return changed
}
