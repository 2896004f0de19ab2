package encoder

import (
	"fmt"

	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/parser"
)

// Relocate is pass 2 (spec §4.4): it walks every record left with a
// pending label by Encode, resolves it against the now-complete symbol
// table, range-checks the patched value, and ORs it into the record's
// word. Diagnostics are reported in program-word order, matching the
// ordering guarantee in spec §5.
func Relocate(records []*Record, symtab *parser.SymbolTable) error {
	var errs parser.ErrorList

	for _, rec := range records {
		if rec.PendingLabel == "" {
			continue
		}

		off, err := symtab.Get(rec.PendingLabel)
		if err != nil {
			errs.Add(parser.NewError(rec.Pos, parser.ErrUndefinedLabel,
				fmt.Sprintf("undefined label: %q", rec.PendingLabel)))
			continue
		}

		var patched int
		var mask uint16
		switch rec.Class {
		case isa.ClassBranch:
			patched = off - rec.PC
			mask = isa.IMM8Mask
			if patched < isa.MinBranchDisp || patched > isa.MaxBranchDisp {
				errs.Add(parser.NewError(rec.Pos, parser.ErrDisplacementOutOfRange,
					"label too far, use register-based branch"))
				continue
			}
		default:
			patched = off
			mask = isa.IMM5Mask
			if patched < isa.MinImmAMI || patched > isa.MaxImmAMI {
				errs.Add(parser.NewError(rec.Pos, parser.ErrDisplacementOutOfRange,
					"immediate out of range"))
				continue
			}
		}

		rec.Word |= uint16(patched) & mask
		rec.PendingLabel = ""
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}
