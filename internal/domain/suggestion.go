package domain

import (
	"encoding/json"
	"fmt"
)

type SuggestionKind string

const (
	SuggestionProduct     SuggestionKind = "product"
	SuggestionCategory    SuggestionKind = "category"
	SuggestionRecentQuery SuggestionKind = "recent_query"
)

// SearchSuggestion is closed over ProductSuggestion, CategorySuggestion and
// RecentQuerySuggestion. Type-switch on the concrete variant to handle it.
type SearchSuggestion interface {
	Kind() SuggestionKind
	isSuggestion()
}

type ProductSuggestion struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
	InStock      bool   `json:"in_stock"`
	Price        int64  `json:"price"`
}

type CategorySuggestion struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

type RecentQuerySuggestion struct {
	Text string `json:"text"`
}

func (ProductSuggestion) Kind() SuggestionKind     { return SuggestionProduct }
func (CategorySuggestion) Kind() SuggestionKind    { return SuggestionCategory }
func (RecentQuerySuggestion) Kind() SuggestionKind { return SuggestionRecentQuery }

func (ProductSuggestion) isSuggestion()     {}
func (CategorySuggestion) isSuggestion()    {}
func (RecentQuerySuggestion) isSuggestion() {}

// wireSuggestion is the flat JSON shape shared by all variants.
type wireSuggestion struct {
	Type         SuggestionKind `json:"type"`
	ProductID    string         `json:"product_id,omitempty"`
	CategoryID   string         `json:"category_id,omitempty"`
	Name         string         `json:"name,omitempty"`
	CategoryName string         `json:"category_name,omitempty"`
	InStock      *bool          `json:"in_stock,omitempty"`
	Price        *int64         `json:"price,omitempty"`
	Text         string         `json:"text,omitempty"`
}

func (s ProductSuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSuggestion{
		Type:         SuggestionProduct,
		ProductID:    s.ProductID,
		Name:         s.Name,
		CategoryName: s.CategoryName,
		InStock:      &s.InStock,
		Price:        &s.Price,
	})
}

func (s CategorySuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSuggestion{
		Type:       SuggestionCategory,
		CategoryID: s.CategoryID,
		Name:       s.Name,
	})
}

func (s RecentQuerySuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSuggestion{
		Type: SuggestionRecentQuery,
		Text: s.Text,
	})
}

// Suggestions is a list that can be decoded back into its variants.
type Suggestions []SearchSuggestion

func (s *Suggestions) UnmarshalJSON(data []byte) error {
	var raw []wireSuggestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Suggestions, 0, len(raw))
	for _, w := range raw {
		switch w.Type {
		case SuggestionProduct:
			p := ProductSuggestion{
				ProductID:    w.ProductID,
				Name:         w.Name,
				CategoryName: w.CategoryName,
			}
			if w.InStock != nil {
				p.InStock = *w.InStock
			}
			if w.Price != nil {
				p.Price = *w.Price
			}
			out = append(out, p)
		case SuggestionCategory:
			out = append(out, CategorySuggestion{CategoryID: w.CategoryID, Name: w.Name})
		case SuggestionRecentQuery:
			out = append(out, RecentQuerySuggestion{Text: w.Text})
		default:
			return fmt.Errorf("unknown suggestion type %q", w.Type)
		}
	}

	*s = out
	return nil
}
