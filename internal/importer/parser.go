package importer

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"partshop/storefront/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	itemsFoundRegex = regexp.MustCompile(`(\d+)\s+Items Found`)
	reviewsRegex    = regexp.MustCompile(`([0-9.]+)\s*\((\d+)\s+reviews?\)`)
	moneyRegex      = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)
)

// Catalog is everything read from one parts list document.
type Catalog struct {
	Categories []domain.Category
	Products   []domain.Product
}

// Parser reads supplier parts lists: one section.category per category with a
// table of tr.part rows.
type Parser struct {
	baseURL string
}

func NewParser(baseURL string) *Parser {
	return &Parser{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (p *Parser) ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

func (p *Parser) Parse(r io.Reader) (*Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	catalog := &Catalog{
		Categories: make([]domain.Category, 0),
		Products:   make([]domain.Product, 0),
	}
	seen := make(map[string]bool)

	doc.Find("section.category").Each(func(i int, section *goquery.Selection) {
		categoryID, ok := section.Attr("data-id")
		categoryID = strings.TrimSpace(categoryID)
		if !ok || categoryID == "" {
			log.Warnf("⚠️ Skipping category section %d without data-id", i)
			return
		}

		icon, _ := section.Attr("data-icon")
		catalog.Categories = append(catalog.Categories, domain.Category{
			ID:   categoryID,
			Name: strings.TrimSpace(section.Find("h2").First().Text()),
			Icon: strings.TrimSpace(icon),
		})

		section.Find("tr.part").Each(func(j int, row *goquery.Selection) {
			product, err := p.parseRow(row, categoryID)
			if err != nil {
				log.Warnf("⚠️ Skipping part row %d in %s: %v", j, categoryID, err)
				return
			}
			if seen[product.ID] {
				log.Warnf("⚠️ Skipping duplicate part %s", product.ID)
				return
			}
			seen[product.ID] = true
			catalog.Products = append(catalog.Products, *product)
		})
	})

	if len(catalog.Categories) == 0 {
		return nil, fmt.Errorf("no category sections found")
	}

	p.checkItemCount(doc, len(catalog.Products))

	log.Debugf("Parsed %d categories with %d parts", len(catalog.Categories), len(catalog.Products))
	return catalog, nil
}

func (p *Parser) parseRow(row *goquery.Selection, categoryID string) (*domain.Product, error) {
	id, _ := row.Attr("data-id")
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("missing data-id")
	}

	name := cellText(row, "name")
	if name == "" {
		return nil, fmt.Errorf("part %s has no name", id)
	}

	price, err := parseMoney(cellText(row, "price"))
	if err != nil {
		return nil, fmt.Errorf("part %s: invalid price: %w", id, err)
	}

	product := &domain.Product{
		ID:           id,
		Name:         name,
		PartNumber:   cellText(row, "part-number"),
		Description:  cellText(row, "description"),
		CategoryID:   categoryID,
		Price:        price,
		DeliveryTime: cellText(row, "delivery"),
	}

	if raw := cellText(row, "original-price"); raw != "" {
		original, err := parseMoney(raw)
		if err != nil {
			return nil, fmt.Errorf("part %s: invalid original price: %w", id, err)
		}
		if original > price {
			product.OriginalPrice = &original
		}
	}

	if raw := cellText(row, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("part %s: invalid stock %q", id, raw)
		}
		product.StockQuantity = stock
	}

	// Rating cell looks like "4.5 (120 reviews)"
	if matches := reviewsRegex.FindStringSubmatch(cellText(row, "rating")); len(matches) > 2 {
		if rating, err := strconv.ParseFloat(matches[1], 64); err == nil {
			product.Rating = rating
		}
		if reviews, err := strconv.Atoi(matches[2]); err == nil {
			product.ReviewCount = reviews
		}
	}

	row.Find(".badge").Each(func(_ int, badge *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(badge.Text())) {
		case domain.BadgePopular:
			product.IsPopular = true
		case domain.BadgeFastTrack, "fast track", "fast-track":
			product.IsFastTrack = true
		}
	})

	if src, ok := row.Find("img").First().Attr("src"); ok && src != "" {
		product.ImageURL = p.absoluteURL(src)
	}

	if added, ok := row.Attr("data-added"); ok && added != "" {
		createdAt, err := time.Parse("2006-01-02", strings.TrimSpace(added))
		if err != nil {
			return nil, fmt.Errorf("part %s: invalid data-added %q", id, added)
		}
		product.CreatedAt = createdAt
	}

	return product, nil
}

// checkItemCount compares against the "N Items Found" banner when the
// document carries one.
func (p *Parser) checkItemCount(doc *goquery.Document, parsed int) {
	matches := itemsFoundRegex.FindStringSubmatch(doc.Find(".summary").Text())
	if len(matches) < 2 {
		return
	}
	expected, err := strconv.Atoi(matches[1])
	if err != nil {
		return
	}
	if expected != parsed {
		log.Warnf("⚠️ Catalog announces %d items but %d were parsed", expected, parsed)
	}
}

func (p *Parser) absoluteURL(src string) string {
	switch {
	case strings.HasPrefix(src, "http"):
		return src
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/") && p.baseURL != "":
		return p.baseURL + src
	default:
		return src
	}
}

func cellText(row *goquery.Selection, class string) string {
	return strings.TrimSpace(row.Find("td." + class).First().Text())
}

// parseMoney reads amounts like "₹1,234" or "735.00" into whole currency units.
func parseMoney(raw string) (int64, error) {
	match := moneyRegex.FindString(raw)
	if match == "" {
		return 0, fmt.Errorf("no amount in %q", raw)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, err
	}
	return amount.Round(0).IntPart(), nil
}
