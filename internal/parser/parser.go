package parser

import "wtp/internal/domain"

// Parser turns a unit result into failure records
type Parser interface {
	ParseFailure(result domain.UnitResult) []domain.UnitFailure
}
