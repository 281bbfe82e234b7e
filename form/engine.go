package form

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/remote"
)

var (
	ErrInFlight         = errors.New("a submission for this form is already in progress")
	ErrAlreadySubmitted = errors.New("form already submitted")
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDLength is the length of client generated record ids.
const IDLength = 9

var (
	idMu  sync.Mutex
	idRnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewID returns a short random base-36 token. It is unique enough within a
// session; it is not meant to be unguessable.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	b := make([]byte, IDLength)
	for i := range b {
		b[i] = idAlphabet[idRnd.Intn(len(idAlphabet))]
	}
	return string(b)
}

// Gates hands out one in-flight flag per form instance key.
type Gates struct {
	flags sync.Map
}

// Enter marks key as submitting. It returns false if a submission for key
// is already running.
func (g *Gates) Enter(key string) bool {
	flag, _ := g.flags.LoadOrStore(key, atomic.NewBool(false))
	return flag.(*atomic.Bool).CAS(false, true)
}

// Leave releases key and forgets it.
func (g *Gates) Leave(key string) {
	if flag, ok := g.flags.LoadAndDelete(key); ok {
		flag.(*atomic.Bool).Store(false)
	}
}

// Len counts the keys currently held.
func (g *Gates) Len() int {
	n := 0
	g.flags.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// InFlight reports whether key is currently submitting.
func (g *Gates) InFlight(key string) bool {
	flag, ok := g.flags.Load(key)
	return ok && flag.(*atomic.Bool).Load()
}

// Engine validates drafts and hands the assembled records to the store.
type Engine struct {
	Store remote.Store
	NewID func() string
	Now   func() time.Time

	gates Gates
}

func NewEngine(store remote.Store) *Engine {
	return &Engine{Store: store, NewID: NewID, Now: time.Now}
}

// InFlight reports whether the form instance key is being submitted.
func (e *Engine) InFlight(key string) bool {
	return e.gates.InFlight(key)
}

// Submit sends the draft. On failure the draft is left untouched so it can be
// sent again by hand; nothing is retried.
func (e *Engine) Submit(ctx context.Context, key string, d *Draft) (sub model.FormSubmission, err error) {
	if d.submitted {
		return sub, ErrAlreadySubmitted
	}
	if err = d.Validate(); err != nil {
		return sub, err
	}
	if !e.gates.Enter(key) {
		return sub, ErrInFlight
	}
	defer e.gates.Leave(key)

	sub = d.Build(e.NewID(), e.Now())
	if err = e.Store.SaveSubmission(ctx, sub); err != nil {
		log.WithError(err).WithField("category", d.Category).Error("form.submit.save")
		return sub, err
	}
	d.submitted = true
	log.Infof("form.submit: %s %s saved", d.Category, sub.ID)
	return sub, nil
}

func (e *Engine) SubmitSchedule(ctx context.Context, key string, d *ScheduleDraft) (sch model.ScheduleEntry, err error) {
	if d.submitted {
		return sch, ErrAlreadySubmitted
	}
	if err = d.Validate(); err != nil {
		return sch, err
	}
	if !e.gates.Enter(key) {
		return sch, ErrInFlight
	}
	defer e.gates.Leave(key)

	sch = d.Build(e.NewID(), e.Now())
	if err = e.Store.SaveSchedule(ctx, sch); err != nil {
		log.WithError(err).Error("form.schedule.save")
		return sch, err
	}
	d.submitted = true
	log.Infof("form.schedule: %s saved", sch.ID)
	return sch, nil
}
