package lifecycle

import (
	"fmt"
	"time"
	"unicode/utf8"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"
)

// Items are checked by validateDeactivationItems and validateWriteOffItems, so
// direct service callers get the same rules as HTTP clients.
type DeactivationItem struct {
	InstanceID  uint                  `json:"instanceId"`
	FinalStatus models.InstanceStatus `json:"finalStatus"`
}

type DeactivationResult struct {
	Processed int `json:"processed"`
	Requested int `json:"requested"`
}

type WriteOffItem struct {
	InstanceID         uint   `json:"instanceId"`
	QuantityToWriteOff int    `json:"quantityToWriteOff"`
	Reason             string `json:"reason"`
}

type WriteOffResult struct {
	Processed int `json:"processed"`
}

const maxReasonLen = 500

// Statuses an issued instance may end in when its holder hands it back.
var returnStatuses = map[models.InstanceStatus]bool{
	models.StatusOnStock:    true,
	models.StatusDamaged:    true,
	models.StatusLost:       true,
	models.StatusUnreturned: true,
}

func validateDeactivationItems(items []DeactivationItem) error {
	for i, it := range items {
		if it.InstanceID == 0 {
			return apperr.Validation(fmt.Sprintf("assets[%d].instanceId", i), "instanceId is required")
		}
		if !returnStatuses[it.FinalStatus] {
			return apperr.Validation(fmt.Sprintf("assets[%d].finalStatus", i),
				"finalStatus %q is not allowed, use on_stock, damaged, lost or unreturned", it.FinalStatus)
		}
	}
	return nil
}

func validateWriteOffItems(items []WriteOffItem) error {
	seen := make(map[uint]bool, len(items))
	for i, it := range items {
		if it.InstanceID == 0 {
			return apperr.Validation(fmt.Sprintf("items[%d].instanceId", i), "instanceId is required")
		}
		if it.QuantityToWriteOff < 1 {
			return apperr.Validation(fmt.Sprintf("items[%d].quantityToWriteOff", i),
				"quantityToWriteOff must be at least 1 (got %d)", it.QuantityToWriteOff)
		}
		if n := utf8.RuneCountInString(it.Reason); n > maxReasonLen {
			return apperr.Validation(fmt.Sprintf("items[%d].reason", i),
				"reason must be at most %d characters (got %d)", maxReasonLen, n)
		}
		if seen[it.InstanceID] {
			return apperr.Validation(fmt.Sprintf("items[%d].instanceId", i),
				"instance %d is listed more than once", it.InstanceID)
		}
		seen[it.InstanceID] = true
	}
	return nil
}

func checkIssuable(inst *models.AssetInstance, emp *models.Employee) error {
	if !emp.IsActive() {
		return apperr.InvalidState("employee %d is archived and cannot receive assets", emp.ID)
	}
	if inst.Status != models.StatusOnStock {
		return apperr.InvalidState("instance %d is not available (status %s)", inst.ID, inst.Status)
	}
	if inst.Quantity < 1 {
		return apperr.InvalidState("instance %d has no remaining quantity", inst.ID)
	}
	return nil
}

// writeOffPlan is the full set of column changes for one write-off line.
type writeOffPlan struct {
	Full         bool
	NewQuantity  int
	CloseHistory bool
	Updates      map[string]any
}

func planWriteOff(inst *models.AssetInstance, qty int, reason string, at time.Time) (writeOffPlan, error) {
	if inst.Status == models.StatusWrittenOff {
		return writeOffPlan{}, apperr.InvalidState("instance %d (%s) is already written off", inst.ID, inst.InventoryNumber)
	}
	if qty > inst.Quantity {
		return writeOffPlan{}, apperr.Validation("quantityToWriteOff",
			"cannot write off %d of %s: only %d available", qty, inst.InventoryNumber, inst.Quantity)
	}

	if qty < inst.Quantity {
		left := inst.Quantity - qty
		return writeOffPlan{
			NewQuantity: left,
			Updates:     map[string]any{"quantity": left},
		}, nil
	}

	return writeOffPlan{
		Full:         true,
		CloseHistory: inst.Status == models.StatusIssued,
		Updates: map[string]any{
			"status":              models.StatusWrittenOff,
			"quantity":            0,
			"current_employee_id": nil,
			"notes":               appendNote(inst.Notes, writeOffNote(reason, at)),
		},
	}, nil
}

func writeOffNote(reason string, at time.Time) string {
	if reason == "" {
		return fmt.Sprintf("Written off %s", at.Format("2006-01-02"))
	}
	return fmt.Sprintf("Written off %s: %s", at.Format("2006-01-02"), reason)
}

func splitNote(sourceID uint) string {
	return fmt.Sprintf("Issued from batch #%d", sourceID)
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

func uniqueIDs[T any](items []T, id func(T) uint) []uint {
	seen := make(map[uint]bool, len(items))
	out := make([]uint, 0, len(items))
	for _, it := range items {
		v := id(it)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
