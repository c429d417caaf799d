package knowledge

import (
	"strings"

	"github.com/OperacionalChopp/botchopp/internal/textnorm"
)

// DefaultRegions lists the Federal District areas served by the store
var DefaultRegions = []string{
	"agua quente", "aguas claras", "arniqueira", "brazlandia", "ceilandia",
	"gama", "guara", "nucleo bandeirante", "park way", "recanto das emas",
	"riacho fundo", "riacho fundo ii", "samambaia", "santa maria",
	"scia/estrutural", "sia", "sol nascente / por do sol", "taguatinga",
	"valparaiso de goias", "vicente pires",
}

// NormalizeRegions folds region names to lowercase without accents and
// drops blanks and duplicates while keeping order.
func NormalizeRegions(regions []string) []string {
	seen := make(map[string]struct{}, len(regions))
	out := make([]string, 0, len(regions))
	for _, region := range regions {
		region = strings.TrimSpace(textnorm.Normalize(region))
		if region == "" {
			continue
		}
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}
		out = append(out, region)
	}
	return out
}
