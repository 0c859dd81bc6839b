// Package api provides HTTP handlers and the main API server logic for CarePath.
//
// It exposes RESTful endpoints for care-plan generation, progress updates,
// activity logging, caregiver management, and on-demand nudge/escalation
// evaluation, and runs the periodic evaluation pass on a cron schedule.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BTreeMap/CarePath/internal/careplan"
	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/escalation"
	"github.com/BTreeMap/CarePath/internal/messaging"
	"github.com/BTreeMap/CarePath/internal/nudge"
	"github.com/BTreeMap/CarePath/internal/scheduler"
	"github.com/BTreeMap/CarePath/internal/store"
	"github.com/BTreeMap/CarePath/internal/util"
)

// Default server configuration.
const (
	DefaultAddr = ":8080"
	// DefaultEvalSchedule runs the evaluation pass at the top of every hour.
	DefaultEvalSchedule = "0 * * * *"
	// evaluationActivityWindow is how much history the periodic pass and the
	// on-demand endpoints hand the engines.
	evaluationActivityWindow = 30 * 24 * time.Hour
)

// Server wires the engines to storage, messaging, and the scheduler.
// Engine invocations for the same user are serialized through per-user
// locks; the engines themselves are not internally synchronized.
type Server struct {
	store       store.Store
	msgService  messaging.Service
	sched       *scheduler.Scheduler
	generator   *careplan.Generator
	nudgeEngine *nudge.Engine
	escalations *escalation.Evaluator
	now         func() time.Time

	newActivityID util.IDSource

	userLocks sync.Map // userID -> *sync.Mutex
}

// NewServer builds a Server around the given backends. The now function is
// the single clock source handed to the engines; production passes
// time.Now, tests pass a fixed value.
func NewServer(st store.Store, msgService messaging.Service, sched *scheduler.Scheduler, cat *catalog.Catalog, now func() time.Time) *Server {
	return &Server{
		store:       st,
		msgService:  msgService,
		sched:       sched,
		generator:   careplan.NewGenerator(cat, util.NewIDSource("cp_")),
		nudgeEngine: nudge.NewEngine(cat, util.NewIDSource("nudge_")),
		escalations: escalation.NewEvaluator(cat, util.NewIDSource("alert_")),
		now:         now,

		newActivityID: util.NewIDSource("act_"),
	}
}

// Handler returns the routing table for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /plans", s.createPlanHandler)
	mux.HandleFunc("GET /plans/{userID}", s.getPlanHandler)
	mux.HandleFunc("POST /plans/{userID}/progress", s.progressHandler)
	mux.HandleFunc("POST /activity", s.activityHandler)
	mux.HandleFunc("PUT /caregivers/{userID}", s.setCaregiversHandler)
	mux.HandleFunc("GET /caregivers/{userID}", s.getCaregiversHandler)
	mux.HandleFunc("POST /nudges/{userID}/evaluate", s.nudgesHandler)
	mux.HandleFunc("POST /escalations/{userID}/evaluate", s.escalationsHandler)
	mux.HandleFunc("GET /updates/{userID}", s.updatesHandler)
	return mux
}

// Run registers the periodic evaluation job and serves the API until the
// listener fails.
func (s *Server) Run(addr, evalSchedule string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if evalSchedule == "" {
		evalSchedule = DefaultEvalSchedule
	}
	if _, err := s.sched.AddJob(evalSchedule, s.runEvaluationPass); err != nil {
		return err
	}
	slog.Info("CarePath API running", "addr", addr, "eval_schedule", evalSchedule)
	return http.ListenAndServe(addr, s.Handler())
}

// lockUser serializes work on one user's plan. Returns the unlock func.
func (s *Server) lockUser(userID string) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
