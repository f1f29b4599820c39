package builderopts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-builder-options/pkg/activity"
	"github.com/google/uuid"
)

var (
	// ErrEmptySelection is returned by Confirm while no item is selected.
	ErrEmptySelection = errors.New("builderopts: at least one item must be selected")
	// ErrSessionClosed is returned by any session operation after a terminal state.
	ErrSessionClosed = errors.New("builderopts: session is closed")
	// ErrUnknownLabel is returned when selecting a label a choice does not offer.
	ErrUnknownLabel = errors.New("builderopts: unknown choice label")
	// ErrNoHost indicates an interactive selection was requested without a host.
	ErrNoHost = errors.New("builderopts: host is required")
	// ErrItemIndex indicates an item index outside the candidate list.
	ErrItemIndex = errors.New("builderopts: item index out of range")
)

// SessionState tracks the selection session lifecycle.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionInteractive
	SessionConfirmed
	SessionCancelled
	SessionAborted
)

// Terminal reports whether no further transition is possible.
func (s SessionState) Terminal() bool {
	return s == SessionConfirmed || s == SessionCancelled || s == SessionAborted
}

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionInteractive:
		return "interactive"
	case SessionConfirmed:
		return "confirmed"
	case SessionCancelled:
		return "cancelled"
	case SessionAborted:
		return "aborted"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Host renders a session and drives it to Confirm or Cancel. Run blocks until
// the user is done; returning without a decision counts as cancellation.
type Host[T any] interface {
	Run(ctx context.Context, session *Session[T]) error
}

// HostFunc adapts a function to Host.
type HostFunc[T any] func(ctx context.Context, session *Session[T]) error

// Run implements Host.
func (f HostFunc[T]) Run(ctx context.Context, session *Session[T]) error {
	if f == nil {
		return nil
	}
	return f(ctx, session)
}

// SelectorOption configures a Selector.
type SelectorOption func(*selectorConfig)

type selectorConfig struct {
	catalogue   Catalogue
	headless    bool
	logger      SessionLogger
	hooks       activity.Hooks
	activityCfg activity.Config
	newID       func() string
}

// WithCatalogue replaces the default catalogue.
func WithCatalogue(catalogue Catalogue) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.catalogue = append(Catalogue(nil), catalogue...)
	}
}

// WithHeadless marks the host as unable to show UI. Headless selections return
// every candidate and leave the store untouched.
func WithHeadless(headless bool) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.headless = headless
	}
}

// WithSessionLogger attaches a session logger.
func WithSessionLogger(logger SessionLogger) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.logger = logger
	}
}

// WithActivity emits option and selection events to hooks.
func WithActivity(hooks activity.Hooks, cfg activity.Config) SelectorOption {
	return func(c *selectorConfig) {
		c.hooks = hooks
		c.activityCfg = cfg
	}
}

// WithSessionIDs overrides the session identifier source (uuid by default).
func WithSessionIDs(next func() string) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.newID = next
	}
}

// Selector holds what every selection session shares: the store, the
// catalogue and the observability sinks. It is safe for concurrent sessions.
type Selector struct {
	store     SettingsStore
	catalogue Catalogue
	headless  bool
	logger    SessionLogger
	emitter   *activity.Emitter
	newID     func() string

	// writeMu serializes write-through so choice groups stay exclusive when
	// the store cannot batch.
	writeMu sync.Mutex
}

// NewSelector constructs a Selector backed by store.
func NewSelector(store SettingsStore, opts ...SelectorOption) *Selector {
	cfg := selectorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.catalogue == nil {
		cfg.catalogue = DefaultCatalogue()
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.newID == nil {
		cfg.newID = uuid.NewString
	}
	return &Selector{
		store:     store,
		catalogue: cfg.catalogue,
		headless:  cfg.headless,
		logger:    cfg.logger,
		emitter:   activity.NewEmitter(cfg.hooks, cfg.activityCfg),
		newID:     cfg.newID,
	}
}

// Catalogue returns the descriptors presented by this selector.
func (s *Selector) Catalogue() Catalogue {
	return append(Catalogue(nil), s.catalogue...)
}

// Headless reports whether UI is suppressed.
func (s *Selector) Headless() bool {
	return s.headless
}

// Store returns the settings store sessions write through to.
func (s *Selector) Store() SettingsStore {
	return s.store
}

// write builds a plan while holding writeMu, so the prior values it reads
// cannot be overwritten by another session before the plan is persisted.
func (s *Selector) write(ctx context.Context, build func(priorValues) writePlan) (writePlan, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	plan := build(priorValues{ctx: ctx, store: s.store})
	return plan, writeAssignments(ctx, s.store, plan.assignments)
}

func (s *Selector) emit(ctx context.Context, sessionID string, event activity.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.LogSession(SessionLogEvent{Kind: SessionEventActivityFailed, SessionID: sessionID, Err: err})
	}
}

// SelectItemsAndOptions runs one selection. It returns the chosen items and
// true on confirmation; (nil, false, nil) when candidates is empty or the user
// cancels. A store failure aborts the session and is returned. In headless
// mode the candidates come back unchanged without touching the store.
func SelectItemsAndOptions[T any](ctx context.Context, selector *Selector, candidates []T, host Host[T]) ([]T, bool, error) {
	if len(candidates) == 0 {
		if selector != nil {
			selector.logger.LogSession(SessionLogEvent{Kind: SessionEventSkipped})
		}
		return nil, false, nil
	}
	if selector == nil {
		return nil, false, fmt.Errorf("builderopts: selector is required")
	}
	if selector.headless {
		selector.logger.LogSession(SessionLogEvent{Kind: SessionEventHeadless, Items: len(candidates)})
		return candidates, true, nil
	}
	if host == nil {
		return nil, false, ErrNoHost
	}

	session, err := NewSession(ctx, selector, candidates)
	if err != nil {
		return nil, false, err
	}
	runErr := host.Run(ctx, session)
	return session.finish(ctx, runErr)
}

// Session is one interactive selection over candidates of type T.
type Session[T any] struct {
	core     *sessionCore
	items    []T
	selected []bool
	result   []T
}

// NewSession resolves the catalogue against the store and enters the
// interactive state with every candidate selected. Most callers use
// SelectItemsAndOptions instead.
func NewSession[T any](ctx context.Context, selector *Selector, candidates []T) (*Session[T], error) {
	if selector == nil {
		return nil, fmt.Errorf("builderopts: selector is required")
	}
	if selector.store == nil {
		return nil, fmt.Errorf("builderopts: settings store is required")
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("builderopts: session needs at least one candidate")
	}

	core := &sessionCore{id: selector.newID(), selector: selector, state: SessionIdle, items: len(candidates)}
	builder := &viewBuilder{ctx: ctx, store: selector.store, core: core}
	for _, d := range selector.catalogue {
		if err := d.Accept(builder); err != nil {
			selector.logger.LogSession(SessionLogEvent{Kind: SessionEventAborted, SessionID: core.id, Err: err})
			return nil, err
		}
	}
	core.views = builder.views

	session := &Session[T]{
		core:     core,
		items:    append([]T(nil), candidates...),
		selected: make([]bool, len(candidates)),
	}
	for i := range session.selected {
		session.selected[i] = true
	}
	core.state = SessionInteractive
	selector.logger.LogSession(SessionLogEvent{Kind: SessionEventStarted, SessionID: core.id, Items: len(candidates)})
	return session, nil
}

// ID returns the session identifier used in logs and activity events.
func (s *Session[T]) ID() string { return s.core.id }

// State returns the current lifecycle state.
func (s *Session[T]) State() SessionState {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.state
}

// Err returns the failure that aborted the session, if any.
func (s *Session[T]) Err() error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.err
}

// Options returns the option views in catalogue order.
func (s *Session[T]) Options() []OptionView {
	return append([]OptionView(nil), s.core.views...)
}

// View returns the view owning id.
func (s *Session[T]) View(id OptionID) (OptionView, bool) {
	for _, view := range s.core.views {
		for _, owned := range descriptorOptions(view.Option()) {
			if owned == id {
				return view, true
			}
		}
	}
	return nil, false
}

// Items returns a copy of the candidates.
func (s *Session[T]) Items() []T {
	return append([]T(nil), s.items...)
}

// IsItemSelected reports whether candidate i is selected.
func (s *Session[T]) IsItemSelected(i int) bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return i >= 0 && i < len(s.selected) && s.selected[i]
}

// SetItemSelected changes the selection of candidate i.
func (s *Session[T]) SetItemSelected(i int, selected bool) error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	if s.core.state != SessionInteractive {
		return ErrSessionClosed
	}
	if i < 0 || i >= len(s.selected) {
		return fmt.Errorf("%w: %d", ErrItemIndex, i)
	}
	s.selected[i] = selected
	return nil
}

// SelectAll selects every candidate.
func (s *Session[T]) SelectAll() error {
	return s.setAll(true)
}

// ClearSelection deselects every candidate.
func (s *Session[T]) ClearSelection() error {
	return s.setAll(false)
}

func (s *Session[T]) setAll(selected bool) error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	if s.core.state != SessionInteractive {
		return ErrSessionClosed
	}
	for i := range s.selected {
		s.selected[i] = selected
	}
	return nil
}

// SelectedItems returns the currently selected candidates in order.
func (s *Session[T]) SelectedItems() []T {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.selectedLocked()
}

func (s *Session[T]) selectedLocked() []T {
	var out []T
	for i, on := range s.selected {
		if on {
			out = append(out, s.items[i])
		}
	}
	return out
}

// CanConfirm reports whether Confirm would succeed.
func (s *Session[T]) CanConfirm() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.state == SessionInteractive && len(s.selectedLocked()) > 0
}

// Confirm ends the session with the selected items. With nothing selected it
// returns ErrEmptySelection and the session stays interactive.
func (s *Session[T]) Confirm(ctx context.Context) error {
	s.core.mu.Lock()
	if s.core.state != SessionInteractive {
		s.core.mu.Unlock()
		return ErrSessionClosed
	}
	chosen := s.selectedLocked()
	if len(chosen) == 0 {
		s.core.mu.Unlock()
		return ErrEmptySelection
	}
	s.result = chosen
	s.core.state = SessionConfirmed
	s.core.mu.Unlock()

	s.core.announce(ctx, SessionEventConfirmed, len(chosen), nil)
	return nil
}

// Cancel ends the session without a selection.
func (s *Session[T]) Cancel(ctx context.Context) error {
	s.core.mu.Lock()
	if s.core.state != SessionInteractive {
		s.core.mu.Unlock()
		return ErrSessionClosed
	}
	s.core.state = SessionCancelled
	s.core.mu.Unlock()

	s.core.announce(ctx, SessionEventCancelled, 0, nil)
	return nil
}

// Result returns the confirmed items, or false when the session did not end
// with a confirmation.
func (s *Session[T]) Result() ([]T, bool) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	if s.core.state != SessionConfirmed {
		return nil, false
	}
	return append([]T(nil), s.result...), true
}

// finish closes an undecided session after the host returned.
func (s *Session[T]) finish(ctx context.Context, runErr error) ([]T, bool, error) {
	if runErr != nil {
		s.core.abort(ctx, runErr)
		return nil, false, runErr
	}

	s.core.mu.Lock()
	state := s.core.state
	s.core.mu.Unlock()

	switch state {
	case SessionConfirmed:
		items, _ := s.Result()
		return items, true, nil
	case SessionAborted:
		return nil, false, s.Err()
	case SessionInteractive:
		_ = s.Cancel(ctx)
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

type optionChange struct {
	key      string
	caption  string
	oldValue bool
	newValue bool
}

type writePlan struct {
	assignments []Assignment
	changes     []optionChange
	commit      func()
}

// sessionCore is the item-independent part of a session shared with views.
type sessionCore struct {
	mu       sync.Mutex
	id       string
	selector *Selector
	state    SessionState
	err      error
	items    int
	views    []OptionView
}

// priorValues reads the persisted value of a key before it is overwritten.
// Change events report it as the old value, so writes made by concurrent
// sessions are not hidden behind this session's view state.
type priorValues struct {
	ctx   context.Context
	store SettingsStore
}

// value returns the stored value of key, or fallback when it cannot be read.
func (p priorValues) value(key string, fallback bool) bool {
	if p.store == nil {
		return fallback
	}
	if lookup, ok := p.store.(ValueLookup); ok {
		value, _, err := lookup.Lookup(p.ctx, key)
		if err != nil {
			return fallback
		}
		return value
	}
	value, err := p.store.IsTrue(p.ctx, key)
	if err != nil {
		return fallback
	}
	return value
}

// writeThrough persists the plan built under the session lock. The view is
// only updated once the store accepted every assignment.
func (c *sessionCore) writeThrough(ctx context.Context, build func(priorValues) writePlan) error {
	c.mu.Lock()
	if c.state != SessionInteractive {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	plan, err := c.selector.write(ctx, build)
	if err != nil {
		c.state = SessionAborted
		c.err = err
		c.mu.Unlock()
		c.announce(ctx, SessionEventAborted, 0, err)
		return err
	}
	if plan.commit != nil {
		plan.commit()
	}
	c.mu.Unlock()

	for _, change := range plan.changes {
		c.selector.logger.LogSession(SessionLogEvent{
			Kind:      SessionEventChanged,
			SessionID: c.id,
			Key:       change.key,
			OldValue:  change.oldValue,
			NewValue:  change.newValue,
		})
		c.selector.emit(ctx, c.id, activity.BuildOptionChangedEvent(activity.OptionChangeInput{
			SessionID: c.id,
			Key:       change.key,
			Caption:   change.caption,
			OldValue:  change.oldValue,
			NewValue:  change.newValue,
		}))
	}
	return nil
}

func (c *sessionCore) abort(ctx context.Context, err error) {
	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		return
	}
	c.state = SessionAborted
	c.err = err
	c.mu.Unlock()
	c.announce(ctx, SessionEventAborted, 0, err)
}

func (c *sessionCore) announce(ctx context.Context, kind string, selected int, err error) {
	c.selector.logger.LogSession(SessionLogEvent{Kind: kind, SessionID: c.id, Items: selected, Err: err})

	input := activity.SelectionInput{SessionID: c.id, Candidates: c.items, Selected: selected}
	if err != nil {
		input.Metadata = map[string]any{"error": err.Error()}
	}
	if kind == SessionEventConfirmed {
		c.selector.emit(ctx, c.id, activity.BuildSelectionConfirmedEvent(input))
		return
	}
	c.selector.emit(ctx, c.id, activity.BuildSelectionCancelledEvent(input))
}
