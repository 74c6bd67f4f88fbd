package ingest

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/semconfig"
)

// ValidationError is one structural problem found in an ingested artifact,
// shaped so a CLI can print a flat list of them directly.
type ValidationError struct {
	Field   string
	Tag     string
	Value   any
	Message string
}

// ValidationResult collects every ValidationError found validating one
// artifact.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ErrorSummary joins every error's message into one line.
func (r ValidationResult) ErrorSummary() string {
	var out string
	for i, e := range r.Errors {
		if i > 0 {
			out += "; "
		}
		out += e.Message
	}
	return out
}

func validationResultFromErr(err error) ValidationResult {
	if err == nil {
		return ValidationResult{Valid: true}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationResult{Valid: false, Errors: []ValidationError{{Message: err.Error()}}}
	}
	var out []ValidationError
	for _, e := range verrs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Value:   e.Value(),
			Message: fmt.Sprintf("%s failed %q validation", e.Namespace(), e.Tag()),
		})
	}
	return ValidationResult{Valid: false, Errors: out}
}

// CheckVariableMappings validates every variable mapping cfg declares
// against the frozen registry: the task it names must exist and must
// declare a formal parameter named by HDDLVar. The check is structural
// only: it does not compare the parameter's HDDL sort with the planner
// sort of the goal-model variable named by GMVar, and no later stage
// (including internal/taskinstance, which resolves GMVar against the goal
// model) makes that comparison either.
func CheckVariableMappings(cfg *semconfig.Config, registry *domain.Registry) error {
	for _, vm := range cfg.VariableMappings {
		task, ok := registry.Task(vm.TaskID)
		if !ok {
			return missionerr.New(missionerr.KindTypeError, vm.TaskID,
				"var_mapping references unknown task %q", vm.TaskID)
		}
		if !hasParam(task, vm.HDDLVar) {
			return missionerr.New(missionerr.KindTypeError, vm.TaskID,
				"var_mapping binds %q but task %q declares no such parameter", vm.HDDLVar, vm.TaskID)
		}
	}
	return nil
}

func hasParam(t *domain.Task, name string) bool {
	for _, p := range t.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}
