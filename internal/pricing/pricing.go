package pricing

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/ivanpodgorny/printshop/internal/entity"
)

const MaxPages = 10000

var (
	ErrInvalidSelection = errors.New("invalid page selection")
	ErrInvalidPageCount = errors.New("invalid page count")
)

var pricePerPage = map[entity.ColorMode]float64{
	entity.ColorModeBW:    1,
	entity.ColorModeColor: 3,
}

// PricePerPage возвращает стоимость одной страницы для режима печати.
func PricePerPage(mode entity.ColorMode) (float64, bool) {
	p, ok := pricePerPage[mode]

	return p, ok
}

// IsAll сообщает, выбраны ли все страницы документа.
func IsAll(selection string) bool {
	s := strings.ToLower(strings.TrimSpace(selection))

	return s == "" || s == "all" || s == "all pages"
}

// ValidSelection проверяет синтаксис выбора страниц без привязки к количеству
// страниц документа.
func ValidSelection(selection string) bool {
	if IsAll(selection) {
		return true
	}

	_, err := parseRanges(selection)

	return err == nil
}

// CountSelection возвращает количество выбранных страниц документа из pages страниц.
// Поддерживаются значения "all", "All Pages", "1-3,5" и "Custom: 1-3,5". Страницы вне
// диапазона [1, pages] не учитываются, пересекающиеся диапазоны учитываются один раз.
func CountSelection(selection string, pages int) (int, error) {
	if IsAll(selection) {
		return pages, nil
	}

	ranges, err := parseRanges(selection)
	if err != nil {
		return 0, err
	}

	clamped := make([][2]int, 0, len(ranges))
	for _, r := range ranges {
		if r[0] > pages {
			continue
		}

		clamped = append(clamped, [2]int{r[0], min(r[1], pages)})
	}

	sort.Slice(clamped, func(i, j int) bool {
		return clamped[i][0] < clamped[j][0]
	})

	count, last := 0, 0
	for _, r := range clamped {
		start := max(r[0], last+1)
		if start <= r[1] {
			count += r[1] - start + 1
			last = r[1]
		}
	}

	return count, nil
}

// Quote рассчитывает стоимость печати документов с количеством страниц pageCounts.
// Количество страниц каждого документа ограничено MaxPages.
func Quote(opts entity.Options, pageCounts []int) (entity.Quote, error) {
	rate, ok := PricePerPage(opts.ColorMode)
	if !ok {
		return entity.Quote{}, errors.New("unknown color mode")
	}

	pages := 0
	for _, n := range pageCounts {
		if n < 1 || n > MaxPages {
			return entity.Quote{}, ErrInvalidPageCount
		}

		selected, err := CountSelection(opts.PageSelection, n)
		if err != nil {
			return entity.Quote{}, err
		}

		pages += selected
	}
	pages *= opts.Copies

	return entity.Quote{
		Pages:        pages,
		PricePerPage: rate,
		Price:        float64(pages) * rate,
	}, nil
}

func parseRanges(selection string) ([][2]int, error) {
	s := strings.TrimSpace(selection)
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[i+1:]
	}

	var ranges [][2]int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		bounds := strings.SplitN(part, "-", 2)
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, ErrInvalidSelection
		}

		end := start
		if len(bounds) == 2 {
			if end, err = strconv.Atoi(strings.TrimSpace(bounds[1])); err != nil {
				return nil, ErrInvalidSelection
			}
		}

		if start < 1 || end < start {
			return nil, ErrInvalidSelection
		}

		ranges = append(ranges, [2]int{start, end})
	}

	if len(ranges) == 0 {
		return nil, ErrInvalidSelection
	}

	return ranges, nil
}
