package specification

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// LegalOptions es lo que un servicio permite del catálogo.
type LegalOptions struct {
	PaperTypes      []string              `json:"paperTypes"`
	PaperWeightsGSM []int                 `json:"paperWeightsGsm"`
	SizePresets     []string              `json:"sizePresets"`
	AllowCustomSize bool                  `json:"allowCustomSize"`
	FinishOptions   []entity.FinishOption `json:"finishOptions"`
}

// FinishIDs de los acabados permitidos.
func (l LegalOptions) FinishIDs() []string {
	out := make([]string, 0, len(l.FinishOptions))
	for _, f := range l.FinishOptions {
		out = append(out, f.ID)
	}
	return out
}

// Change registra un campo reparado.
type Change struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// RepairReport lista lo que tocó Repair.
type RepairReport struct {
	Changes         []Change `json:"changes,omitempty"`
	DroppedFinishes []string `json:"droppedFinishes,omitempty"`
}

// Changed indica si la selección se modificó.
func (r RepairReport) Changed() bool {
	return len(r.Changes) > 0 || len(r.DroppedFinishes) > 0
}

// Resolve calcula los conjuntos permitidos de un servicio. Un servicio nil o sin restricciones
// permite todo el catálogo; una lista de papel vacía también cae al catálogo.
func Resolve(svc *entity.Service, cat Catalog) LegalOptions {
	legal := LegalOptions{
		PaperTypes:      slices.Clone(cat.PaperTypes),
		PaperWeightsGSM: slices.Clone(cat.PaperWeightsGSM),
		SizePresets:     cat.PresetNames(),
		AllowCustomSize: true,
		FinishOptions:   activeFinishes(cat.FinishOptions, nil),
	}
	if svc == nil || svc.Options.IsEmpty() {
		return legal
	}
	opts := svc.Options
	if types := dedupeFold(opts.Paper.Types); len(types) > 0 {
		legal.PaperTypes = types
	}
	if weights := dedupeInts(opts.Paper.WeightsGSM); len(weights) > 0 {
		legal.PaperWeightsGSM = weights
	}
	if presets := dedupeFold(opts.Sizing.StandardPresets); len(presets) > 0 {
		legal.SizePresets = presets
	}
	legal.AllowCustomSize = opts.CustomSizeAllowed()
	if len(opts.FinishIDs) > 0 {
		legal.FinishOptions = activeFinishes(cat.FinishOptions, opts.FinishIDs)
	}
	return legal
}

func activeFinishes(all []entity.FinishOption, allowed []string) []entity.FinishOption {
	out := make([]entity.FinishOption, 0, len(all))
	for _, f := range all {
		if !f.Active {
			continue
		}
		if allowed != nil && !slices.Contains(allowed, f.ID) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func dedupeFold(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || indexFold(out, s) >= 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func dedupeInts(in []int) []int {
	out := make([]int, 0, len(in))
	for _, v := range in {
		if v > 0 && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func indexFold(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}

// Repair devuelve una selección a los conjuntos permitidos. Tipo de papel, gramaje y tamaño caen
// al primer elemento permitido; los acabados no permitidos se descartan con sus precios pactados.
// La entrada no se modifica y reparar una selección ya reparada no cambia nada.
func Repair(legal LegalOptions, spec entity.Specification) (entity.Specification, RepairReport) {
	out := spec.Clone()
	var rep RepairReport

	if len(legal.PaperTypes) > 0 {
		if i := indexFold(legal.PaperTypes, out.Paper.Type); i < 0 {
			rep.Changes = append(rep.Changes, Change{Field: "paper.type", From: out.Paper.Type, To: legal.PaperTypes[0]})
			out.Paper.Type = legal.PaperTypes[0]
		} else if legal.PaperTypes[i] != out.Paper.Type {
			out.Paper.Type = legal.PaperTypes[i]
		}
	}
	if len(legal.PaperWeightsGSM) > 0 && !slices.Contains(legal.PaperWeightsGSM, out.Paper.Weight) {
		rep.Changes = append(rep.Changes, Change{
			Field: "paper.weight",
			From:  strconv.Itoa(out.Paper.Weight),
			To:    strconv.Itoa(legal.PaperWeightsGSM[0]),
		})
		out.Paper.Weight = legal.PaperWeightsGSM[0]
	}
	repairSize(legal, &out, &rep)

	kept := make([]string, 0, len(out.Finishing.SelectedIDs))
	allowed := legal.FinishIDs()
	for _, id := range out.Finishing.SelectedIDs {
		if slices.Contains(kept, id) {
			continue
		}
		if !slices.Contains(allowed, id) {
			rep.DroppedFinishes = append(rep.DroppedFinishes, id)
			delete(out.Finishing.Overrides, id)
			continue
		}
		kept = append(kept, id)
	}
	out.Finishing.SelectedIDs = kept
	return out, rep
}

func repairSize(legal LegalOptions, spec *entity.Specification, rep *RepairReport) {
	size := spec.Size
	switch size.Kind {
	case entity.SizeCustom:
		if legal.AllowCustomSize || len(legal.SizePresets) == 0 {
			return
		}
		from := fmt.Sprintf("custom %sx%s%s", size.Width.String(), size.Height.String(), size.Unit)
		spec.Size = entity.StandardSize(legal.SizePresets[0])
		rep.Changes = append(rep.Changes, Change{Field: "size", From: from, To: legal.SizePresets[0]})
	default:
		if len(legal.SizePresets) == 0 {
			return
		}
		if i := indexFold(legal.SizePresets, size.Preset); i >= 0 {
			spec.Size = entity.StandardSize(legal.SizePresets[i])
			return
		}
		spec.Size = entity.StandardSize(legal.SizePresets[0])
		rep.Changes = append(rep.Changes, Change{Field: "size.preset", From: size.Preset, To: legal.SizePresets[0]})
	}
}

// ResolveAndRepair resuelve los conjuntos permitidos de svc y repara spec contra ellos.
func ResolveAndRepair(svc *entity.Service, cat Catalog, spec entity.Specification) (LegalOptions, entity.Specification, RepairReport) {
	legal := Resolve(svc, cat)
	repaired, rep := Repair(legal, spec)
	return legal, repaired, rep
}
