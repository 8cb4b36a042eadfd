package reconcile

import (
	"github.com/winback/message-service/internal/types"
	"github.com/winback/message-service/internal/validate"
)

// DefaultLocales is used when no locale is supplied for a defaults
// mutation.
var DefaultLocales = []string{"en-US"}

// ExpandDefaults produces the cartesian product of products and
// locales as independent mutation units, preserving input order and
// dropping duplicate pairs. MessageID is empty for clears. Exactly
// P*L units come out for P products and L locales.
func ExpandDefaults(messageID string, productIDs, locales []string) []types.DefaultMutationUnit {
	if len(locales) == 0 {
		locales = DefaultLocales
	}

	seen := make(map[[2]string]struct{}, len(productIDs)*len(locales))
	units := make([]types.DefaultMutationUnit, 0, len(productIDs)*len(locales))

	for _, product := range productIDs {
		for _, locale := range locales {
			key := [2]string{product, locale}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			units = append(units, types.DefaultMutationUnit{
				MessageID: messageID,
				ProductID: product,
				Locale:    locale,
			})
		}
	}
	return units
}

// ExpandRowDefaults turns one table row into mutation units. Products
// supplied on the command line take precedence over the row's product
// column; the row's locale is always used.
func ExpandRowDefaults(row types.ImportRow, cliProducts []string) ([]types.DefaultMutationUnit, string) {
	if errs := validate.DefaultsRow(row); len(errs) > 0 {
		return nil, validate.Join(errs)
	}

	products := cliProducts
	if len(products) == 0 {
		if p := row.Value(types.FieldProductID); p != "" {
			products = []string{p}
		} else {
			return nil, "product_id: required value is missing"
		}
	}

	units := ExpandDefaults(row.Value(types.FieldMessageID), products, []string{row.Value(types.FieldLocale)})
	for i := range units {
		units[i].RowNumber = row.Number
	}
	return units, ""
}
