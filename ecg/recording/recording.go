// Package recording analyses every lead of a multi-channel ECG recording.
//
// [Assemble] builds one [lead.Lead] per channel concurrently, at most one
// goroutine per channel, and waits for all of them. A failing lead does not
// affect its siblings: each channel slot carries either a lead or the error
// that prevented it.
package recording

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ecg/ecg/lead"
)

var (
	// ErrInputShape reports a source with no channels, too many channels,
	// bad slot assignments or a non-positive sample rate.
	ErrInputShape = errors.New("recording: invalid input shape")
	// ErrNoLeads is returned by Leads-consuming helpers when every slot
	// failed.
	ErrNoLeads = errors.New("recording: no lead was built")
)

// Source is a loaded recording before analysis.
type Source struct {
	Channels [][]float64
	// Slots gives the lead slot of each entry in Channels. When nil,
	// Channels[k] is analysed as lead slot k.
	Slots      []int
	SampleRate int
	Unit       string
}

// Slot returns the lead slot of Channels[k].
func (s Source) Slot(k int) int {
	if s.Slots == nil {
		return k
	}
	return s.Slots[k]
}

func (s Source) validate() error {
	n := len(s.Channels)
	if n == 0 || n > lead.MaxChannels {
		return fmt.Errorf("%w: %d channels, want 1..%d", ErrInputShape, n, lead.MaxChannels)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInputShape, s.SampleRate)
	}
	if s.Slots == nil {
		return nil
	}
	if len(s.Slots) != n {
		return fmt.Errorf("%w: %d slots for %d channels", ErrInputShape, len(s.Slots), n)
	}
	var seen [lead.MaxChannels]bool
	for _, slot := range s.Slots {
		if slot < 0 || slot >= lead.MaxChannels || seen[slot] {
			return fmt.Errorf("%w: slot %d out of range or repeated", ErrInputShape, slot)
		}
		seen[slot] = true
	}
	return nil
}

// Outcome is the result for one channel slot. Exactly one of Lead and Err
// is set for a used slot; both are nil for an unused one.
type Outcome struct {
	Lead *lead.Lead
	Err  error
}

// Used reports whether the slot held a channel.
func (o Outcome) Used() bool { return o.Lead != nil || o.Err != nil }

// Recording is the assembled result of all channels.
type Recording struct {
	SampleRate int
	Unit       string
	// Channels counts the used slots.
	Channels int
	Outcomes [lead.MaxChannels]Outcome
	// CommonBeats is left empty by Assemble and reserved for cross-lead
	// consensus computed by callers.
	CommonBeats []int
}

// Assemble validates src and analyses each channel with the given lead
// options. The returned error is non-nil only for input shape problems;
// per-lead failures are reported in Outcomes.
func Assemble(src Source, opts ...lead.Option) (*Recording, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	n := len(src.Channels)

	rec := &Recording{
		SampleRate: src.SampleRate,
		Unit:       src.Unit,
		Channels:   n,
	}

	var g errgroup.Group
	g.SetLimit(n)
	for k, samples := range src.Channels {
		ch := src.Slot(k)
		g.Go(func() error {
			rec.Outcomes[ch] = build(ch, samples, src.SampleRate, src.Unit, opts)
			return nil
		})
	}
	_ = g.Wait()

	return rec, nil
}

func build(ch int, samples []float64, fs int, unit string, opts []lead.Option) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("lead %d: panic: %v", ch, r)}
		}
	}()

	l, err := lead.New(ch, samples, fs, unit, opts...)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Lead: l}
}

// Leads returns the successfully built leads in slot order.
func (r *Recording) Leads() []*lead.Lead {
	out := make([]*lead.Lead, 0, r.Channels)
	for _, o := range r.Outcomes {
		if o.Lead != nil {
			out = append(out, o.Lead)
		}
	}
	return out
}

// Lead returns the lead in slot ch, or nil when the slot is unused or
// failed.
func (r *Recording) Lead(ch int) *lead.Lead {
	if ch < 0 || ch >= len(r.Outcomes) {
		return nil
	}
	return r.Outcomes[ch].Lead
}

// Err joins the errors of all failed slots, or returns nil.
func (r *Recording) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Primary returns the first successfully built lead. It fails with
// ErrNoLeads, joined with every slot error, when none was built.
func (r *Recording) Primary() (*lead.Lead, error) {
	for _, o := range r.Outcomes {
		if o.Lead != nil {
			return o.Lead, nil
		}
	}
	return nil, errors.Join(ErrNoLeads, r.Err())
}
