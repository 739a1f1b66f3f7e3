package protocol

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/fields"
	"asset-inventory-backend/internal/models"
	"asset-inventory-backend/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Assembler builds write-off protocols. It only reads.
type Assembler struct {
	db     *gorm.DB
	org    config.Organization
	signer *Signer
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAssembler(db *gorm.DB, org config.Organization, signer *Signer, log logrus.FieldLogger) *Assembler {
	return &Assembler{db: db, org: org, signer: signer, log: log.WithField("module", "protocol"), now: time.Now}
}

func (a *Assembler) Assemble(ctx context.Context, req Request) (*Protocol, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkDistinct(req.Items); err != nil {
		return nil, err
	}
	date := a.now()
	if strings.TrimSpace(req.Date) != "" {
		d, err := fields.ParseDate(req.Date)
		if err != nil {
			return nil, apperr.Validation("date", "date %v", err)
		}
		date = d
	}

	db := a.db.WithContext(ctx)

	ids := make([]uint, len(req.Items))
	for i, it := range req.Items {
		ids[i] = it.InstanceID
	}
	var rows []models.AssetInstance
	if err := db.Preload("AssetType").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "asset instances could not be loaded")
	}
	byID := make(map[uint]models.AssetInstance, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	lines, totalQty, total, err := buildLines(req.Items, byID)
	if err != nil {
		return nil, err
	}

	p := &Protocol{
		Organization:   a.org,
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		Date:           date.Format(fields.DateLayout),
		MainReason:     req.MainReason,
		Notes:          req.Notes,
		Items:          lines,
		TotalQuantity:  totalQty,
		TotalSum:       fields.Money(total),
	}
	if p.DocumentNumber == "" {
		p.DocumentNumber = defaultDocumentNumber(date, len(lines))
	}

	if p.Chair, err = resolveRole(db, req.ChairID, "chair", "commission_role = ?", models.CommissionChair); err != nil {
		return nil, err
	}
	if p.HeadOfEnterprise, err = resolveRole(db, req.HeadOfEnterpriseID, "head of enterprise", "is_head_of_enterprise = ?", true); err != nil {
		return nil, err
	}
	if p.ChiefAccountant, err = resolveRole(db, req.ChiefAccountantID, "chief accountant", "is_chief_accountant = ?", true); err != nil {
		return nil, err
	}
	if p.Members, err = resolveMembers(db, req.MemberIDs); err != nil {
		return nil, err
	}
	if p.ResponsiblePerson, err = resolveRole(db, nil, "responsible person", "is_responsible = ?", true); err != nil {
		return nil, err
	}

	if a.signer != nil {
		pairs := make(map[uint]int, len(lines))
		for _, l := range lines {
			pairs[l.InstanceID] = l.Quantity
		}
		if p.ConfirmationToken, err = a.signer.Sign(p.DocumentNumber, pairs); err != nil {
			return nil, apperr.Internal(err, "confirmation token could not be signed")
		}
	}

	a.log.WithFields(logrus.Fields{
		"documentNumber": p.DocumentNumber,
		"items":          len(lines),
		"totalSum":       p.TotalSum,
	}).Info("write-off protocol assembled")
	return p, nil
}

// buildLines checks every requested quantity against its instance and sums
// unitCost x quantity exactly. Rounding happens only in fields.Money.
func buildLines(items []RequestItem, byID map[uint]models.AssetInstance) ([]LineItem, int, decimal.Decimal, error) {
	var missing []uint
	for _, it := range items {
		if _, ok := byID[it.InstanceID]; !ok {
			missing = append(missing, it.InstanceID)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		e := apperr.NotFound("asset instances not found: %v", missing)
		e.MissingIDs = missing
		return nil, 0, decimal.Zero, e
	}

	lines := make([]LineItem, 0, len(items))
	total := decimal.Zero
	totalQty := 0
	for i, it := range items {
		inst := byID[it.InstanceID]
		if inst.Status == models.StatusWrittenOff {
			return nil, 0, decimal.Zero, apperr.InvalidState("instance %s is already written off", inst.InventoryNumber)
		}
		if it.Quantity > inst.Quantity {
			return nil, 0, decimal.Zero, apperr.Validation(fmt.Sprintf("items[%d].quantity", i),
				"requested %d of %s but only %d available", it.Quantity, inst.InventoryNumber, inst.Quantity)
		}

		sum := inst.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(sum)
		totalQty += it.Quantity

		line := LineItem{
			Number:          i + 1,
			InstanceID:      inst.ID,
			InventoryNumber: inst.InventoryNumber,
			Quantity:        it.Quantity,
			UnitCost:        fields.Money(inst.UnitCost),
			ItemSum:         fields.Money(sum),
			Reason:          it.Reason,
		}
		if inst.AssetType != nil {
			line.AssetTypeName = inst.AssetType.Name
			line.UnitOfMeasure = inst.AssetType.UnitOfMeasure
		}
		lines = append(lines, line)
	}
	return lines, totalQty, total, nil
}

func checkDistinct(items []RequestItem) error {
	seen := make(map[uint]bool, len(items))
	for i, it := range items {
		if seen[it.InstanceID] {
			return apperr.Validation(fmt.Sprintf("items[%d].instanceId", i), "instance %d is listed more than once", it.InstanceID)
		}
		seen[it.InstanceID] = true
	}
	return nil
}

func defaultDocumentNumber(date time.Time, lines int) string {
	return fmt.Sprintf("WO-%s-%d", date.Format("20060102"), lines)
}

// resolveRole loads the employee with id, or when id is nil the first active
// employee matching the flag query. A missing fallback is not an error.
func resolveRole(db *gorm.DB, id *uint, role, query string, arg any) (*Signatory, error) {
	var emp models.Employee
	if id != nil {
		if err := db.First(&emp, "id = ?", *id).Error; err != nil {
			return nil, apperr.FromDB(err, fmt.Sprintf("%s (employee %d)", role, *id))
		}
		s := signatoryOf(emp)
		return &s, nil
	}

	var found []models.Employee
	err := db.Where("status = ?", models.EmployeeActive).Where(query, arg).Order("id").Limit(1).Find(&found).Error
	if err != nil {
		return nil, apperr.Internal(err, "%s could not be resolved", role)
	}
	if len(found) == 0 {
		return nil, nil
	}
	s := signatoryOf(found[0])
	return &s, nil
}

func resolveMembers(db *gorm.DB, ids []uint) ([]Signatory, error) {
	var emps []models.Employee
	if len(ids) == 0 {
		err := db.Where("status = ? AND commission_role = ?", models.EmployeeActive, models.CommissionMember).
			Order("full_name").Find(&emps).Error
		if err != nil {
			return nil, apperr.Internal(err, "commission members could not be resolved")
		}
	} else {
		if err := db.Where("id IN ?", ids).Find(&emps).Error; err != nil {
			return nil, apperr.Internal(err, "commission members could not be resolved")
		}
		byID := make(map[uint]models.Employee, len(emps))
		for _, e := range emps {
			byID[e.ID] = e
		}
		emps = emps[:0]
		var missing []uint
		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			e, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			emps = append(emps, e)
		}
		if len(missing) > 0 {
			e := apperr.NotFound("commission members not found: %v", missing)
			e.MissingIDs = missing
			return nil, e
		}
	}

	out := make([]Signatory, 0, len(emps))
	for _, e := range emps {
		out = append(out, signatoryOf(e))
	}
	return out, nil
}
