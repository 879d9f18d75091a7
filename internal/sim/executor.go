package sim

import (
	"fmt"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/sirupsen/logrus"
)

// Executor serves bridge requests against a Backend on the tick goroutine.
// Each decoded request applies its command and advances exactly one step
// of length dt.
//
// A request that does not decode neither applies nor advances anything;
// it is answered with the backend's current state so the controller always
// gets one response per line.
type Executor struct {
	backend   Backend
	dt        float64
	log       logrus.FieldLogger
	observers []Observer
	metrics   []Metric

	steps    int
	episodes int
	dropped  int
	time     float64
}

func NewExecutor(backend Backend, dt float64, log logrus.FieldLogger) (*Executor, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", dt)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{
		backend:   backend,
		dt:        dt,
		log:       log,
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
	}, nil
}

func (e *Executor) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Executor) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Handle implements bridge.Handler.
func (e *Executor) Handle(msg string) string {
	cmd, ok := bridge.Decode(msg)
	if !ok {
		e.dropped++
		e.log.WithField("request", msg).Warn("undecodable request, answering with current state")
		step := Step{
			Index:   e.steps,
			Episode: e.episodes,
			Time:    e.time,
			Request: msg,
			State:   e.backend.ComputeState(),
		}
		e.notify(step)
		return bridge.Encode(step.State)
	}

	state, err := e.Execute(cmd)
	step := Step{
		Index:   e.steps,
		Episode: e.episodes,
		Time:    e.time,
		Request: msg,
		Decoded: true,
		Command: cmd,
		State:   state,
		Err:     err,
	}
	for _, m := range e.metrics {
		m.Observe(step)
	}
	e.notify(step)
	return bridge.Encode(state)
}

// Execute applies cmd, advances one step and returns the new state. If the
// backend rejects the step the error is returned alongside the last good
// state.
func (e *Executor) Execute(cmd bridge.Command) (bridge.StateVector, error) {
	if cmd.Mode == bridge.ModeReset {
		e.episodes++
		e.log.WithFields(logrus.Fields{
			"episode": e.episodes,
			"x":       cmd.Reset.X,
			"y":       cmd.Reset.Y,
			"z":       cmd.Reset.Z,
		}).Debug("reset")
	}

	e.backend.ApplyCommand(cmd)
	err := e.backend.Advance(e.dt)
	if err != nil {
		e.log.WithError(err).WithField("step", e.steps).Error("physics step rejected")
	} else {
		e.steps++
		e.time += e.dt
	}
	return e.backend.ComputeState(), err
}

func (e *Executor) notify(s Step) {
	for _, o := range e.observers {
		o.OnStep(s)
	}
}

func (e *Executor) Steps() int    { return e.steps }
func (e *Executor) Episodes() int { return e.episodes }
func (e *Executor) Dropped() int  { return e.dropped }
func (e *Executor) Dt() float64   { return e.dt }

// Metrics returns the current value of every registered metric.
func (e *Executor) Metrics() map[string]float64 {
	out := make(map[string]float64, len(e.metrics)+3)
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	out["steps"] = float64(e.steps)
	out["episodes"] = float64(e.episodes)
	out["dropped"] = float64(e.dropped)
	return out
}
