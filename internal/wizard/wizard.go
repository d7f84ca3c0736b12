// Package wizard tracks one participant's in-progress preference selections
// before submission: a three-step linear flow over mood, energy and runtime,
// with content type as an optional extra defaulting to "both".
package wizard

import (
	"sync"

	"github.com/victornm/quickpick/internal/domain"
)

const (
	StepMood    = 0
	StepEnergy  = 1
	StepRuntime = 2
)

// Flow is a selection wizard. Safe for concurrent use.
type Flow struct {
	mu          sync.Mutex
	mood        *domain.Mood
	energy      *domain.EnergyLevel
	runtime     *domain.RuntimePreference
	contentType domain.ContentType
	step        int
}

func New() *Flow {
	return &Flow{contentType: domain.ContentBoth}
}

func (f *Flow) SetMood(m domain.Mood) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mood = &m
}

func (f *Flow) SetEnergy(e domain.EnergyLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.energy = &e
}

func (f *Flow) SetRuntime(r domain.RuntimePreference) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runtime = &r
}

func (f *Flow) SetContentType(c domain.ContentType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentType = c
}

func (f *Flow) Step() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) NextStep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = clampStep(f.step + 1)
}

func (f *Flow) PrevStep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = clampStep(f.step - 1)
}

func (f *Flow) GoToStep(step int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = clampStep(step)
}

// IsComplete reports whether mood, energy and runtime are all selected.
// Content type is not required.
func (f *Flow) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mood != nil && f.energy != nil && f.runtime != nil
}

// Preferences returns the assembled selections. ok is false until the flow
// is complete.
func (f *Flow) Preferences() (prefs domain.Preferences, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mood == nil || f.energy == nil || f.runtime == nil {
		return domain.Preferences{}, false
	}

	return domain.Preferences{
		Mood:        *f.mood,
		Energy:      *f.energy,
		Runtime:     *f.runtime,
		ContentType: f.contentType,
	}, true
}

// Reset returns the flow to its initial state: no selections, content type
// "both", step 0.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mood = nil
	f.energy = nil
	f.runtime = nil
	f.contentType = domain.ContentBoth
	f.step = StepMood
}

func clampStep(step int) int {
	if step < StepMood {
		return StepMood
	}
	if step > StepRuntime {
		return StepRuntime
	}
	return step
}
