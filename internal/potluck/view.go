package potluck

import "github.com/Lixing-Zhang/potluck/internal/models"

// Row is an entry as displayed, carrying its server-order index so that
// edit and delete can address it from any page.
type Row struct {
	Index int `json:"index"`
	models.Entry
}

// DisplayRows returns the entries most recent first.
func DisplayRows(entries []models.Entry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = Row{Index: i, Entry: e}
	}
	return rows
}

// PageCount is the number of pages needed for total rows; at least 1.
func PageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns the rows on page (1-based). Out of range pages are
// clamped; the clamped page number is returned with the slice.
func Paginate(rows []Row, page, size int) ([]Row, int) {
	pages := PageCount(len(rows), size)
	page = min(max(page, 1), pages)
	if size <= 0 {
		return rows, 1
	}
	start := min((page-1)*size, len(rows))
	end := min(start+size, len(rows))
	return rows[start:end], page
}

// View is everything a client needs to render the board.
type View struct {
	Categories    []CategorySummary `json:"categories"`
	Available     []string          `json:"available"`
	Form          Form              `json:"form"`
	QuantityBound int               `json:"quantityBound"`
	FormMessage   string            `json:"formMessage,omitempty"`
	Loading       bool              `json:"loading"`

	Entries      []Row `json:"entries"`
	TotalEntries int   `json:"totalEntries"`
	Page         int   `json:"page"`
	Pages        int   `json:"pages"`
	PageSize     int   `json:"pageSize"`

	Admin AdminView `json:"admin"`
}

// AdminView is the admin part of View.
type AdminView struct {
	LoggedIn    bool   `json:"loggedIn"`
	Message     string `json:"message,omitempty"`
	Editing     *Edit  `json:"editing,omitempty"`
	EditMessage string `json:"editMessage,omitempty"`
	Downloading bool   `json:"downloading"`
}

// View renders the current state with the given page of entries.
func (s *State) View(page, pageSize int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summarize(s.categories, s.entries)
	rows, page := Paginate(DisplayRows(s.entries), page, pageSize)

	v := View{
		Categories:    summary,
		Available:     AvailableCategories(summary),
		Form:          s.form,
		QuantityBound: QuantityBound(summary, s.form.Category),
		FormMessage:   s.formMsg,
		Loading:       s.loading,
		Entries:       rows,
		TotalEntries:  len(s.entries),
		Page:          page,
		Pages:         PageCount(len(s.entries), pageSize),
		PageSize:      pageSize,
		Admin: AdminView{
			LoggedIn:    s.adminMode,
			Message:     s.adminMsg,
			EditMessage: s.editMsg,
			Downloading: s.downloading,
		},
	}
	if v.Available == nil {
		v.Available = []string{}
	}
	if s.edit != nil {
		edit := *s.edit
		v.Admin.Editing = &edit
	}
	return v
}
