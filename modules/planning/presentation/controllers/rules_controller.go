package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers/dtos"
	"github.com/allocat-dev/allocat/modules/planning/services"
	"github.com/allocat-dev/allocat/pkg/application"
)

// RulesController is the administrative CRUD surface of the rule catalog.
type RulesController struct {
	app      application.Application
	basePath string
	rules    *services.RuleService
}

func NewRulesController(app application.Application, rules *services.RuleService) application.Controller {
	return &RulesController{
		app:      app,
		basePath: "/planning/api",
		rules:    rules,
	}
}

func (c *RulesController) Key() string {
	return c.basePath + "/rules"
}

func (c *RulesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/rules/{kind}", c.listRules).Methods(http.MethodGet)
	router.HandleFunc("/rules/{kind}", c.createRule).Methods(http.MethodPost)
	router.HandleFunc("/rules/{kind}/{id}", c.updateRule).Methods(http.MethodPatch)
	router.HandleFunc("/rules/{kind}/{id}", c.deleteRule).Methods(http.MethodDelete)
}

func (c *RulesController) listRules(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	rules := c.rules.Rules(kind)
	resp := make([]dtos.RuleResponse, 0, len(rules))
	for _, ruleEntry := range rules {
		resp = append(resp, dtos.NewRuleResponse(ruleEntry))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *RulesController) createRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_BODY", "invalid JSON body")
		return
	}
	severity, err := rule.ParseSeverity(req.Severity)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_RULE", err.Error())
		return
	}
	predicate, err := req.Predicate.Build()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_RULE", err.Error())
		return
	}
	if req.Field == "" || req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_RULE", "field and message are required")
		return
	}

	created, err := c.rules.Add(kind, rule.Rule{
		ID:            req.ID,
		Name:          req.Name,
		Field:         req.Field,
		Predicate:     predicate,
		Message:       req.Message,
		Severity:      severity,
		AutoFixable:   req.AutoFixable,
		FixSuggestion: req.FixSuggestion,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateRule) {
			writeJSONError(w, http.StatusConflict, "PLANNING_DUPLICATE_RULE", err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, dtos.NewRuleResponse(created))
}

func (c *RulesController) updateRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_BODY", "invalid JSON body")
		return
	}
	patch := services.RulePatch{
		Name:          req.Name,
		Field:         req.Field,
		Message:       req.Message,
		AutoFixable:   req.AutoFixable,
		FixSuggestion: req.FixSuggestion,
		Predicate:     req.Predicate,
	}
	if req.Severity != nil {
		severity, err := rule.ParseSeverity(*req.Severity)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_RULE", err.Error())
			return
		}
		patch.Severity = &severity
	}

	updated, err := c.rules.Update(kind, mux.Vars(r)["id"], patch)
	if err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			writeJSONError(w, http.StatusNotFound, "PLANNING_RULE_NOT_FOUND", err.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_RULE", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewRuleResponse(updated))
}

func (c *RulesController) deleteRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	if err := c.rules.Remove(kind, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			writeJSONError(w, http.StatusNotFound, "PLANNING_RULE_NOT_FOUND", err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
