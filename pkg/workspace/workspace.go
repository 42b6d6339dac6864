// Package workspace implements an in-memory, schema-governed object store.
// Records reference one another by handle; the workspace keeps its reference,
// type, name and reference-list indexes consistent across every mutation,
// enforces a strictness level, and notifies registered watchers.
//
// A Workspace is single-writer: it carries no locks and must not be shared
// across goroutines without external synchronization.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// MetricsRecorder receives one observation per public mutation.
type MetricsRecorder interface {
	Observe(operation string, success bool, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) Observe(string, bool, time.Duration) {}

type handleSet map[domain.Handle]struct{}

func (s handleSet) add(h domain.Handle) { s[h] = struct{}{} }

type edge struct {
	source domain.Handle
	field  int
}

type entry struct {
	rec     domain.Record
	def     *schema.TypeDef
	seq     uint64
	sources map[edge]struct{}
}

func (e *entry) name() (string, bool) {
	if !e.def.HasName() {
		return "", false
	}
	s, ok := e.rec.Field(0).AsString()
	return s, ok
}

// Workspace owns a set of records and the indexes derived from them.
type Workspace struct {
	provider schema.Provider
	level    domain.StrictnessLevel
	logger   *slog.Logger
	metrics  MetricsRecorder
	rules    *RulesEngine

	objects  map[domain.Handle]*entry
	issued   handleSet
	seq      uint64
	byType   map[string]handleSet
	byName   map[string]handleSet
	byBase   map[string]handleSet
	refLists map[string]map[domain.Handle]int
	order    *Order

	watchers  []*Watcher
	notifying int
}

// Option configures a Workspace at construction.
type Option func(*Workspace)

// WithStrictness sets the initial strictness level. The default is Draft.
func WithStrictness(level domain.StrictnessLevel) Option {
	return func(w *Workspace) { w.level = level }
}

// WithLogger routes workspace logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics records per-operation timings.
func WithMetrics(m MetricsRecorder) Option {
	return func(w *Workspace) {
		if m != nil {
			w.metrics = m
		}
	}
}

// WithRules registers rules in addition to the built-in set.
func WithRules(rules ...Rule) Option {
	return func(w *Workspace) {
		for _, r := range rules {
			w.rules.Register(r)
		}
	}
}

// WithRulesEngine replaces the built-in rule set.
func WithRulesEngine(engine *RulesEngine) Option {
	return func(w *Workspace) {
		if engine != nil {
			w.rules = engine.clone()
		}
	}
}

// New constructs an empty workspace consulting provider for object types.
func New(provider schema.Provider, opts ...Option) (*Workspace, error) {
	if provider == nil {
		return nil, errors.New("workspace: schema provider required")
	}
	w := newWorkspace(provider)
	for _, opt := range opts {
		opt(w)
	}
	if !w.level.Valid() {
		return nil, fmt.Errorf("workspace: invalid strictness level %d", int(w.level))
	}
	if report := w.ValidityReport(w.level); !report.Empty() {
		return nil, domain.IntegrityError{Op: "new workspace", Reason: "empty workspace is not valid at " + w.level.String(), Report: report}
	}
	return w, nil
}

func newWorkspace(provider schema.Provider) *Workspace {
	w := &Workspace{
		provider: provider,
		level:    domain.StrictnessDraft,
		logger:   slog.New(slog.DiscardHandler),
		metrics:  nopMetrics{},
		rules:    NewDefaultRulesEngine(),
		objects:  make(map[domain.Handle]*entry),
		issued:   make(handleSet),
		byType:   make(map[string]handleSet),
		byName:   make(map[string]handleSet),
		byBase:   make(map[string]handleSet),
		refLists: make(map[string]map[domain.Handle]int),
	}
	w.order = newOrder(w)
	return w
}

// Schema returns the provider the workspace consults.
func (w *Workspace) Schema() schema.Provider { return w.provider }

// Logger returns the workspace logger.
func (w *Workspace) Logger() *slog.Logger { return w.logger }

// StrictnessLevel returns the level the workspace is held valid at.
func (w *Workspace) StrictnessLevel() domain.StrictnessLevel { return w.level }

// SetStrictnessLevel changes the level only if the workspace is already valid at it.
func (w *Workspace) SetStrictnessLevel(level domain.StrictnessLevel) (err error) {
	defer w.observe("set_strictness", time.Now(), &err)
	if err := w.guard(); err != nil {
		return err
	}
	if !level.Valid() {
		return fmt.Errorf("invalid strictness level %d", int(level))
	}
	if report := w.ValidityReport(level); !report.Empty() {
		return domain.IntegrityError{Op: "set strictness", Reason: "workspace is not valid at " + level.String(), Report: report}
	}
	w.level = level
	return nil
}

// IsValid reports whether no rule tagged at or below level is violated.
func (w *Workspace) IsValid(level domain.StrictnessLevel) bool {
	return w.ValidityReport(level).Empty()
}

// ValidityReport evaluates every rule tagged at or below level against every
// record, in Order, followed by the collection rules. It does not mutate.
func (w *Workspace) ValidityReport(level domain.StrictnessLevel) domain.Report {
	return w.rules.Evaluate(w, w.Handles(), level, true)
}

// RegisterRule adds a rule, refusing it if the workspace would stop being
// valid at its current level.
func (w *Workspace) RegisterRule(rule Rule) error {
	if err := w.guard(); err != nil {
		return err
	}
	probe := w.rules.clone()
	probe.Register(rule)
	if report := probe.Evaluate(w, w.Handles(), w.level, true); !report.Empty() {
		return domain.IntegrityError{Op: "register rule " + rule.Name(), Reason: "workspace would be invalid at " + w.level.String(), Report: report}
	}
	w.rules = probe
	return nil
}

// NumObjects returns the number of attached records.
func (w *Workspace) NumObjects() int { return len(w.objects) }

// IsMember reports whether h is attached.
func (w *Workspace) IsMember(h domain.Handle) bool {
	_, ok := w.objects[h]
	return ok
}

// Handles returns every attached handle in Order.
func (w *Workspace) Handles() []domain.Handle { return w.order.Handles() }

// Object returns a copy of the record at h.
func (w *Workspace) Object(h domain.Handle) (domain.Record, bool) {
	e, ok := w.objects[h]
	if !ok {
		return domain.Record{}, false
	}
	return e.rec.Clone(), true
}

// Objects returns copies of every record in Order.
func (w *Workspace) Objects() []domain.Record {
	return w.records(w.Handles())
}

// TypeDefOf returns the object type of the record at h.
func (w *Workspace) TypeDefOf(h domain.Handle) (*schema.TypeDef, bool) {
	e, ok := w.objects[h]
	if !ok {
		return nil, false
	}
	return e.def, true
}

// Name returns the name of the record at h, if its type is named and the name is set.
func (w *Workspace) Name(h domain.Handle) (string, bool) {
	e, ok := w.objects[h]
	if !ok {
		return "", false
	}
	return e.name()
}

// ObjectsByType returns the records of objectType in Order.
func (w *Workspace) ObjectsByType(objectType string) []domain.Record {
	return w.records(w.sorted(w.byType[strings.ToLower(objectType)]))
}

// NumObjectsOfType counts the records of objectType.
func (w *Workspace) NumObjectsOfType(objectType string) int {
	return len(w.byType[strings.ToLower(objectType)])
}

// ObjectsByName returns records whose name equals name case-insensitively.
// When exact is false, records in the same numbered series also match:
// "Zone" matches "Zone 1" and "zone_2".
func (w *Workspace) ObjectsByName(name string, exact bool) []domain.Record {
	if exact {
		return w.records(w.sorted(w.byName[strings.ToLower(name)]))
	}
	return w.records(w.sorted(w.byBase[strings.ToLower(baseName(name))]))
}

// ObjectByTypeAndName returns the record of objectType named name.
func (w *Workspace) ObjectByTypeAndName(objectType, name string) (domain.Record, bool) {
	for _, h := range w.sorted(w.byName[strings.ToLower(name)]) {
		if strings.EqualFold(w.objects[h].def.Name, objectType) {
			return w.objects[h].rec.Clone(), true
		}
	}
	return domain.Record{}, false
}

// ObjectsByTypeAndName returns the records of objectType in name's numbered series.
func (w *Workspace) ObjectsByTypeAndName(objectType, name string) []domain.Record {
	var hs []domain.Handle
	for h := range w.byBase[strings.ToLower(baseName(name))] {
		if strings.EqualFold(w.objects[h].def.Name, objectType) {
			hs = append(hs, h)
		}
	}
	w.order.sortHandles(hs)
	return w.records(hs)
}

// ObjectsByReference returns the records registered under any of lists.
func (w *Workspace) ObjectsByReference(lists ...string) []domain.Record {
	set := make(handleSet)
	for _, list := range lists {
		if list == schema.AllObjects {
			return w.Objects()
		}
		for h := range w.refLists[list] {
			set.add(h)
		}
	}
	return w.records(w.sorted(set))
}

// ObjectByNameAndReference returns the first record, in Order, named name
// that may be targeted through lists. Empty lists match any record.
func (w *Workspace) ObjectByNameAndReference(name string, lists []string) (domain.Record, bool) {
	h, ok := w.lookupByNameAndReference(name, lists)
	if !ok {
		return domain.Record{}, false
	}
	return w.objects[h].rec.Clone(), true
}

func (w *Workspace) lookupByNameAndReference(name string, lists []string) (domain.Handle, bool) {
	for _, h := range w.sorted(w.byName[strings.ToLower(name)]) {
		if len(lists) == 0 || w.CanBeTarget(h, lists) {
			return h, true
		}
	}
	return domain.NullHandle, false
}

// CanBeTarget reports whether h is registered under any of lists, either by
// its type or through a forwarding reference. AllObjects matches any record.
func (w *Workspace) CanBeTarget(h domain.Handle, lists []string) bool {
	if _, ok := w.objects[h]; !ok {
		return false
	}
	for _, list := range lists {
		if list == schema.AllObjects || w.refLists[list][h] > 0 {
			return true
		}
	}
	return false
}

// NameConflicts returns the records that clash with the name of h: same
// name, case-insensitively, and either the same type or a shared reference list.
func (w *Workspace) NameConflicts(h domain.Handle) []domain.Handle {
	e, ok := w.objects[h]
	if !ok {
		return nil
	}
	name, ok := e.name()
	if !ok {
		return nil
	}
	return w.conflicting(name, e.def, h)
}

func (w *Workspace) conflicting(name string, def *schema.TypeDef, self domain.Handle) []domain.Handle {
	var out []domain.Handle
	for h := range w.byName[strings.ToLower(name)] {
		if h == self {
			continue
		}
		if potentialConflict(def, w.objects[h].def) {
			out = append(out, h)
		}
	}
	w.order.sortHandles(out)
	return out
}

func potentialConflict(a, b *schema.TypeDef) bool {
	return strings.EqualFold(a.Name, b.Name) || a.SharesReferenceList(b)
}

func (w *Workspace) records(hs []domain.Handle) []domain.Record {
	out := make([]domain.Record, 0, len(hs))
	for _, h := range hs {
		out = append(out, w.objects[h].rec.Clone())
	}
	return out
}

func (w *Workspace) sorted(set handleSet) []domain.Handle {
	out := make([]domain.Handle, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	w.order.sortHandles(out)
	return out
}

func (w *Workspace) guard() error {
	if w.notifying > 0 {
		return domain.ErrReentrantMutation
	}
	return nil
}

func (w *Workspace) observe(op string, start time.Time, err *error) {
	w.metrics.Observe(op, err == nil || *err == nil, time.Since(start))
}
