package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nittany-hub/course-planner/internal/application/command"
	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Course Planner API",
		"version":     "v1",
		"description": "Degree planning, prerequisite eligibility, and schedule conflict detection",
		"endpoints": map[string]string{
			"health":          "/health",
			"sign_in":         "/api/v1/auth/sign-in",
			"courses":         "/api/v1/courses",
			"recommendations": "/api/v1/students/{id}/recommendations",
			"plan":            "/api/v1/plans/{id}",
			"conflicts":       "/api/v1/plans/{id}/conflicts",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION & CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleSignIn handles POST /api/v1/auth/sign-in
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.deps.SignInHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sign-in handler not configured")
		return
	}

	var body struct {
		Login     string `json:"login"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.SignInHandler.Handle(r.Context(), command.SignInCommand{
		Login:     student.LoginID(body.Login),
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	})
	if err != nil {
		s.writeDomainError(w, err, "sign in failed")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// handleSearchCourses handles GET /api/v1/courses
func (s *Server) handleSearchCourses(w http.ResponseWriter, r *http.Request) {
	if s.deps.CatalogRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Catalog not configured")
		return
	}

	courses, err := s.deps.CatalogRepo.SearchCourses(r.Context(),
		getQueryParam(r, "q", ""),
		getQueryParam(r, "subject", ""),
		getQueryParamInt(r, "level", 0),
		getQueryParamInt(r, "limit", 50),
	)
	if err != nil {
		s.writeDomainError(w, err, "course search failed")
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// handleListSubjects handles GET /api/v1/subjects
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	if s.deps.CatalogRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Catalog not configured")
		return
	}

	subjects, err := s.deps.CatalogRepo.ListSubjects(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to list subjects")
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

// handleListPrograms handles GET /api/v1/programs
func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	if s.deps.ProgramRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Programs not configured")
		return
	}

	programs, err := s.deps.ProgramRepo.ListPrograms(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to list programs")
		return
	}

	writeJSON(w, http.StatusOK, programs)
}

// ══════════════════════════════════════════════════════════════════════════════
// DECISION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleCheckEligibility handles GET /api/v1/students/{id}/eligibility/{courseID}
func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	if s.deps.CheckEligibilityHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Eligibility handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseID")
	if !ok {
		return
	}

	q := query.CheckEligibilityQuery{
		StudentID: shared.StudentID(studentID),
		CourseID:  shared.CourseID(courseID),
		PlanID:    shared.PlanID(getQueryParamInt(r, "plan_id", 0)),
	}

	result, err := s.deps.CheckEligibilityHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "eligibility check failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMissingPrereqs handles GET /api/v1/students/{id}/missing-prereqs/{courseID}
func (s *Server) handleMissingPrereqs(w http.ResponseWriter, r *http.Request) {
	if s.deps.MissingPrereqsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Missing-prereqs handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseID")
	if !ok {
		return
	}

	result, err := s.deps.MissingPrereqsHandler.Handle(r.Context(), query.MissingPrereqsQuery{
		StudentID: shared.StudentID(studentID),
		CourseID:  shared.CourseID(courseID),
	})
	if err != nil {
		s.writeDomainError(w, err, "missing-prereqs lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRecommend handles GET /api/v1/students/{id}/recommendations
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecommendHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Recommendation handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q := query.RecommendQuery{
		StudentID:  shared.StudentID(studentID),
		PlanID:     shared.PlanID(getQueryParamInt(r, "plan_id", 0)),
		MaxResults: getQueryParamInt(r, "limit", 0),
	}

	result, err := s.deps.RecommendHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "recommendation failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleFindConflicts handles GET /api/v1/plans/{id}/conflicts
func (s *Server) handleFindConflicts(w http.ResponseWriter, r *http.Request) {
	if s.deps.FindConflictsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Conflict handler not configured")
		return
	}

	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.deps.FindConflictsHandler.Handle(r.Context(), query.FindConflictsQuery{
		PlanID: shared.PlanID(planID),
	})
	if err != nil {
		s.writeDomainError(w, err, "conflict detection failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEGREE PLAN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetPlan handles GET /api/v1/plans/{id}
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetPlanHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Plan handler not configured")
		return
	}

	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.deps.GetPlanHandler.Handle(r.Context(), query.GetPlanQuery{
		PlanID: shared.PlanID(planID),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to load plan")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAddPlannedCourse handles POST /api/v1/plans/{id}/courses
func (s *Server) handleAddPlannedCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.AddPlannedCourseHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Plan handler not configured")
		return
	}

	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		TermID   int64 `json:"term_id"`
		CourseID int64 `json:"course_id"`
		Force    bool  `json:"force"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.AddPlannedCourseHandler.Handle(r.Context(), command.AddPlannedCourseCommand{
		PlanID:   shared.PlanID(planID),
		TermID:   shared.TermID(body.TermID),
		CourseID: shared.CourseID(body.CourseID),
		Force:    body.Force,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to add planned course")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleRemovePlannedCourse handles DELETE /api/v1/plans/{id}/courses/{entryID}
func (s *Server) handleRemovePlannedCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.RemovePlannedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Plan handler not configured")
		return
	}

	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	result, err := s.deps.RemovePlannedHandler.Handle(r.Context(), command.RemovePlannedCourseCommand{
		PlanID:  shared.PlanID(planID),
		EntryID: entryID,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to remove planned course")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT, PROGRAM, ENROLLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRecordGrade handles POST /api/v1/students/{id}/transcript
func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	if s.deps.TranscriptHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Transcript handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		CourseID int64  `json:"course_id"`
		Grade    string `json:"grade"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.TranscriptHandler.RecordGrade(r.Context(), command.RecordGradeCommand{
		StudentID: shared.StudentID(studentID),
		CourseID:  shared.CourseID(body.CourseID),
		Grade:     body.Grade,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to record grade")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleUpdateGrade handles PUT /api/v1/students/{id}/transcript/{enrollmentID}
func (s *Server) handleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	if s.deps.TranscriptHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Transcript handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	enrollmentID, ok := pathID(w, r, "enrollmentID")
	if !ok {
		return
	}

	var body struct {
		Grade string `json:"grade"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.TranscriptHandler.UpdateGrade(r.Context(), command.UpdateGradeCommand{
		StudentID:    shared.StudentID(studentID),
		EnrollmentID: enrollmentID,
		Grade:        body.Grade,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to update grade")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRemoveCompletion handles DELETE /api/v1/students/{id}/transcript/{enrollmentID}
func (s *Server) handleRemoveCompletion(w http.ResponseWriter, r *http.Request) {
	if s.deps.TranscriptHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Transcript handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	enrollmentID, ok := pathID(w, r, "enrollmentID")
	if !ok {
		return
	}

	result, err := s.deps.TranscriptHandler.RemoveCompletion(r.Context(), command.RemoveCompletionCommand{
		StudentID:    shared.StudentID(studentID),
		EnrollmentID: enrollmentID,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to remove completion")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSetPrimaryProgram handles PUT /api/v1/students/{id}/primary-program
func (s *Server) handleSetPrimaryProgram(w http.ResponseWriter, r *http.Request) {
	if s.deps.SetPrimaryProgramHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Program handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		ProgramID int64 `json:"program_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.SetPrimaryProgramHandler.Handle(r.Context(), command.SetPrimaryProgramCommand{
		StudentID: shared.StudentID(studentID),
		ProgramID: shared.ProgramID(body.ProgramID),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to set primary program")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetSchedule handles GET /api/v1/students/{id}/schedule
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetScheduleHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Schedule handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.deps.GetScheduleHandler.Handle(r.Context(), query.GetScheduleQuery{
		StudentID: shared.StudentID(studentID),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to load schedule")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleEnrollSection handles POST /api/v1/students/{id}/enrollments
func (s *Server) handleEnrollSection(w http.ResponseWriter, r *http.Request) {
	if s.deps.EnrollSectionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		SectionID      int64 `json:"section_id"`
		AllowConflicts bool  `json:"allow_conflicts"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.deps.EnrollSectionHandler.Enroll(r.Context(), command.EnrollSectionCommand{
		StudentID:      shared.StudentID(studentID),
		SectionID:      shared.SectionID(body.SectionID),
		AllowConflicts: body.AllowConflicts,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to enroll")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleDropSection handles DELETE /api/v1/students/{id}/enrollments/{sectionID}
func (s *Server) handleDropSection(w http.ResponseWriter, r *http.Request) {
	if s.deps.EnrollSectionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sectionID, ok := pathID(w, r, "sectionID")
	if !ok {
		return
	}

	result, err := s.deps.EnrollSectionHandler.Drop(r.Context(), command.DropSectionCommand{
		StudentID: shared.StudentID(studentID),
		SectionID: shared.SectionID(sectionID),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to drop section")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleImportCatalog handles POST /admin/v1/import
func (s *Server) handleImportCatalog(w http.ResponseWriter, r *http.Request) {
	if s.deps.Importer == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Importer not configured")
		return
	}

	var body struct {
		Dir string `json:"dir"`
	}
	// The body is optional; an empty request imports from the configured
	// directory.
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Dir == "" {
		body.Dir = s.config.ImportDir
	}

	summary, err := s.deps.Importer.ImportDir(r.Context(), body.Dir)
	if err != nil {
		s.logger.Error("catalog import failed", logger.Err(err), logger.String("dir", body.Dir))
		writeJSONError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// pathID parses a numeric path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request",
			"Path parameter "+name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return false
	}
	return true
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		writeJSONError(w, http.StatusConflict, "schedule_conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		writeJSONError(w, http.StatusConflict, "prereq_not_satisfied", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsConfiguration(err):
		s.logger.Error("configuration error", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "configuration_error",
			"Rule tables or catalog are inconsistent")
	default:
		s.logger.Error(fallback, logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
