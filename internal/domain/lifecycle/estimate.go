// Package lifecycle contiene las máquinas de estado de cotizaciones y facturas.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// Event provoca una transición de la cotización.
type Event string

const (
	EventSend    Event = "send"
	EventView    Event = "view"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventConvert Event = "convert"
)

var estimateTransitions = map[entity.EstimateStatus]map[Event]entity.EstimateStatus{
	entity.EstimateDraft: {
		EventSend: entity.EstimateSent,
	},
	entity.EstimateSent: {
		EventView:    entity.EstimateViewed,
		EventApprove: entity.EstimateApproved,
		EventReject:  entity.EstimateRejected,
	},
	entity.EstimateViewed: {
		EventApprove: entity.EstimateApproved,
		EventReject:  entity.EstimateRejected,
	},
	entity.EstimateApproved: {
		EventConvert: entity.EstimateConverted,
	},
}

// IsTerminal indica si ninguna transición sale de s.
func IsTerminal(s entity.EstimateStatus) bool {
	switch s {
	case entity.EstimateRejected, entity.EstimateExpired, entity.EstimateConverted:
		return true
	}
	return false
}

// Target devuelve el estado al que lleva ev desde from, o ErrInvalidTransition.
func Target(from entity.EstimateStatus, ev Event) (entity.EstimateStatus, error) {
	if to, ok := estimateTransitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: cannot %s an estimate in status %s", domain.ErrInvalidTransition, ev, from)
}

// CanTransition indica si algún evento lleva de from a to.
// Incluye el vencimiento: las cotizaciones enviadas o vistas pueden caducar.
func CanTransition(from, to entity.EstimateStatus) bool {
	for _, t := range estimateTransitions[from] {
		if t == to {
			return true
		}
	}
	return to == entity.EstimateExpired && (from == entity.EstimateSent || from == entity.EstimateViewed)
}

// EffectiveStatus deriva el vencimiento perezoso: una cotización enviada o vista pasada su expires_at se lee como expired.
func EffectiveStatus(e *entity.Estimate, now time.Time) entity.EstimateStatus {
	if (e.Status == entity.EstimateSent || e.Status == entity.EstimateViewed) &&
		e.ExpiresAt != nil && now.After(*e.ExpiresAt) {
		return entity.EstimateExpired
	}
	return e.Status
}

// ApplyOptions datos opcionales que traen algunos eventos.
type ApplyOptions struct {
	// Response es el texto del cliente al aprobar/rechazar.
	Response string
	// Validity fija expires_at al enviar cuando la cotización no lo tiene.
	Validity time.Duration
	// JobID es obligatorio al convertir.
	JobID string
}

// Apply lleva e por ev en now, estampando la marca de tiempo correspondiente. Si hay error, e no cambia.
func Apply(e *entity.Estimate, ev Event, now time.Time, opts ApplyOptions) error {
	from := EffectiveStatus(e, now)
	if IsTerminal(from) {
		return fmt.Errorf("%w: estimate is %s", domain.ErrInvalidTransition, from)
	}
	to, err := Target(from, ev)
	if err != nil {
		return err
	}
	if ev == EventConvert && strings.TrimSpace(opts.JobID) == "" {
		return fmt.Errorf("%w: conversion requires a job id", domain.ErrInvalidInput)
	}
	if ev == EventConvert && e.ConvertedToJobID != "" {
		return fmt.Errorf("%w: estimate already converted", domain.ErrInvalidTransition)
	}

	ts := now.UTC()
	switch to {
	case entity.EstimateSent:
		e.SentAt = &ts
		if e.ExpiresAt == nil && opts.Validity > 0 {
			exp := ts.Add(opts.Validity)
			e.ExpiresAt = &exp
		}
	case entity.EstimateViewed:
		e.ViewedAt = &ts
	case entity.EstimateApproved, entity.EstimateRejected:
		e.RespondedAt = &ts
		if r := strings.TrimSpace(opts.Response); r != "" {
			e.CustomerResponse = r
		}
	case entity.EstimateConverted:
		e.ConvertedToJobID = opts.JobID
	}
	e.Status = to
	e.UpdatedAt = ts
	return nil
}

// Revisable indica si se puede crear una versión nueva de una cotización en estado s.
// Las aprobadas y convertidas quedan congeladas; todo lo demás se puede revisar.
func Revisable(s entity.EstimateStatus) bool {
	return s != entity.EstimateApproved && s != entity.EstimateConverted
}
