package pdfsvc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
)

// Page geometry (mm)
const (
	marginX      = 15.0
	marginTop    = 10.0
	marginBottom = 10.0
	contentWidth = 180.0

	headerRowHeight = 10.0
	rowHeight       = 6.0
	lineHeight      = 4.0

	stars    = "***************************"
	fontName = "Helvetica"
	stampKey = "stamp"
)

var (
	// grade table columns
	colWidths  = []float64{46, 12, 17, 17, 12, 24, 22}
	colHeaders = [][]string{
		{"Matières"},
		{"Moy,CL", "m"},
		{"N, Compo", "n"},
		{"M,G,", "(m+2n)/3"},
		{"Coef,", "k"},
		{"Moy Coef", "(m+2n)/3*k"},
		{"Appr,"},
	}
	tableWidth = sum(colWidths...)
	tableX     = marginX + (contentWidth-tableWidth)/2

	footerWidths  = []float64{45, 50, 40, 45}
	averageWidths = []float64{60, 60, 60}
)

func sum(xs ...float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Renderer draws bulletins as one A4 PDF page.
type Renderer struct {
	school    core.SchoolConfig
	stamp     []byte
	stampType string // PNG | JPG
	compress  bool
}

var _ bulletin.Renderer = (*Renderer)(nil) // interface compliance check

type Option func(*Renderer)

// WithStamp prints the school stamp image between the signature lines.
func WithStamp(img []byte, imgType string) Option {
	return func(r *Renderer) {
		r.stamp = img
		r.stampType = strings.ToUpper(imgType)
	}
}

// WithoutCompression writes uncompressed page streams.
func WithoutCompression() Option {
	return func(r *Renderer) { r.compress = false }
}

func NewRenderer(school core.SchoolConfig, opts ...Option) *Renderer {
	r := &Renderer{school: school, compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadStamp reads a PNG or JPEG stamp image. The image type is taken from the file extension.
func LoadStamp(path string) ([]byte, string, error) {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "PNG", "JPG":
	case "JPEG":
		ext = "JPG"
	default:
		return nil, "", errors.Errorf("unsupported stamp image type %q", ext)
	}
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading stamp image")
	}
	return img, ext, nil
}

// page wraps the fpdf document with the cp1252 translator needed by the core fonts.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(fontName, style, size)
}

func (p *page) cell(w, h float64, txt, border string, ln int, align string) {
	p.pdf.CellFormat(w, h, p.tr(txt), border, ln, align, false, 0, "")
}

// box draws a bordered cell of several centered lines at the current position, then moves right.
func (p *page) box(w, h float64, lines []string) {
	x, y := p.pdf.GetXY()
	p.pdf.Rect(x, y, w, h, "D")
	top := y + (h-float64(len(lines))*lineHeight)/2
	for i, line := range lines {
		p.pdf.SetXY(x, top+float64(i)*lineHeight)
		p.cell(w, lineHeight, line, "", 0, "C")
	}
	p.pdf.SetXY(x+w, y)
}

func (r *Renderer) Render(b bulletin.Bulletin, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	if !b.GeneratedAt.IsZero() {
		pdf.SetCreationDate(b.GeneratedAt)
	}
	pdf.SetTitle("Bulletin de notes - "+b.Student.PrintedName()+" - "+b.Period, true)
	pdf.SetAuthor("Lycée "+r.school.Name, true)
	pdf.SetCreator("bulletin", false)

	if len(r.stamp) > 0 {
		pdf.RegisterImageOptionsReader(stampKey, fpdf.ImageOptions{ImageType: r.stampType}, bytes.NewReader(r.stamp))
	}

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()

	r.header(p)
	r.identity(p, b)
	r.section(p, b.Part1)
	pdf.Ln(3)
	r.section(p, b.Part2)
	r.globalTotal(p, b)
	pdf.Ln(4)
	r.footer(p, b)
	pdf.Ln(4)
	r.averages(p, b)
	pdf.Ln(4)
	r.signatures(p)

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "drawing bulletin")
	}
	return errors.Wrap(pdf.Output(w), "writing bulletin")
}

func (r *Renderer) header(p *page) {
	p.font("B", 10)
	p.cell(0, 5, r.school.Ministry, "", 1, "C")
	p.font("", 8)
	p.cell(0, 3, stars, "", 1, "C")
	p.font("B", 10)
	p.cell(0, 5, "Académie d'Enseignement de "+r.school.City, "", 1, "C")
	p.font("", 8)
	p.cell(0, 3, stars, "", 1, "C")
	p.pdf.Ln(2)

	rows := [][2]string{
		{"Lycée " + r.school.Name + " de " + r.school.City + " BP : " + r.school.BP + " TEL: " + r.school.Tel, r.school.Country},
		{"E-mail: " + r.school.Email + " / " + r.school.TelAlt, r.school.Motto},
		{"", stars},
	}
	for i, row := range rows {
		if i == 0 {
			p.font("B", 9)
		} else {
			p.font("", 9)
		}
		p.cell(110, 5, row[0], "", 0, "L")
		p.font("B", 9)
		p.cell(70, 5, row[1], "", 1, "C")
	}
	p.pdf.Ln(3)
}

func (r *Renderer) identity(p *page, b bulletin.Bulletin) {
	p.font("B", 11)
	p.cell(60, 10, b.Period, "", 0, "L")
	p.font("B", 16)
	p.cell(60, 10, b.Student.PrintedName(), "", 0, "C")
	p.font("B", 11)
	p.cell(60, 10, b.Student.ClassName, "", 1, "R")
	p.pdf.Ln(2)
}

func (r *Renderer) section(p *page, s bulletin.Section) {
	p.pdf.SetX(tableX)
	p.font("B", 8)
	for i, lines := range colHeaders {
		p.box(colWidths[i], headerRowHeight, lines)
	}
	p.pdf.Ln(headerRowHeight)

	p.font("", 8)
	for _, row := range s.Rows {
		values := []string{
			row.Subject,
			bulletin.FormatScore(row.ClassAvg),
			bulletin.FormatScore(row.Composition),
			bulletin.FormatScore(row.MeritGrade),
			strconv.Itoa(row.Coef),
			bulletin.FormatScore(row.Weighted),
			row.Appreciation,
		}
		p.pdf.SetX(tableX)
		for i, v := range values {
			align := "C"
			if i == 0 {
				align = "L"
			}
			p.cell(colWidths[i], rowHeight, v, "1", 0, align)
		}
		p.pdf.Ln(rowHeight)
	}

	p.font("B", 8)
	p.pdf.SetX(tableX)
	p.cell(sum(colWidths[:4]...), rowHeight, "Total Partiel", "1", 0, "R")
	p.cell(colWidths[4], rowHeight, strconv.Itoa(s.Total.Coef), "1", 0, "C")
	p.cell(colWidths[5], rowHeight, bulletin.FormatScore(s.Total.Weighted), "1", 0, "C")
	p.cell(colWidths[6], rowHeight, "", "1", 1, "C")

	p.pdf.SetX(tableX)
	p.cell(sum(colWidths[:5]...), rowHeight, "Moy.Partielle", "1", 0, "R")
	p.cell(colWidths[5], rowHeight, bulletin.FormatScore(s.Average), "1", 0, "C")
	p.cell(colWidths[6], rowHeight, s.Appreciation, "1", 1, "C")
}

func (r *Renderer) globalTotal(p *page, b bulletin.Bulletin) {
	p.pdf.Ln(3)
	p.font("B", 8)
	p.pdf.SetX(tableX)
	p.cell(sum(colWidths[:4]...), rowHeight, "Total Global", "1", 0, "R")
	p.cell(colWidths[4], rowHeight, strconv.Itoa(b.Total.Coef), "1", 0, "C")
	p.cell(colWidths[5], rowHeight, bulletin.FormatScore(b.Total.Weighted), "1", 0, "C")
	p.cell(colWidths[6], rowHeight, b.Appreciation, "1", 1, "C")
}

func (r *Renderer) footer(p *page, b bulletin.Bulletin) {
	p.font("B", 9)
	p.cell(footerWidths[0], 7, "Rang: "+b.Rank.Label(), "", 0, "L")
	p.cell(footerWidths[1], 7, r.school.City+", le "+bulletin.FormatDate(b.GeneratedAt), "", 0, "C")
	p.cell(footerWidths[2], 7, "Moy: "+bulletin.FormatAverage(b.Average), "", 0, "R")
	p.cell(footerWidths[3], 7, "Moy, du 1er: "+b.Rank.TopLabel(), "", 1, "R")
}

func (r *Renderer) averages(p *page, b bulletin.Bulletin) {
	cells := [][]string{
		{"Moy.1ère Période", bulletin.FormatAverage(b.Part1.Average)},
		{"Moy.2ème Période", bulletin.FormatAverage(b.Part2.Average)},
		{"Moyenne Annuelle", bulletin.FormatAverage(b.Average)},
	}
	p.font("B", 9)
	p.pdf.SetLineWidth(0.35)
	for i, lines := range cells {
		p.box(averageWidths[i], 12, lines)
	}
	p.pdf.SetLineWidth(0.2)
	p.pdf.Ln(12)
}

func (r *Renderer) signatures(p *page) {
	p.font("B", 10)
	p.cell(90, 6, "Le Proviseur", "", 1, "L")

	x, y := p.pdf.GetXY()
	if len(r.stamp) > 0 {
		p.pdf.ImageOptions(stampKey, x, y, 35, 0, false, fpdf.ImageOptions{ImageType: r.stampType}, 0, "")
	}
	p.pdf.SetXY(x, y+25)

	p.cell(90, 6, "Tableau dExcellence", "", 0, "L")
	p.cell(90, 6, "Signature du Parent", "", 1, "R")
}

// WriteFile renders `b` to `path` through a temporary file of the same directory,
// which is removed whenever rendering or writing fails.
func WriteFile(path string, r bulletin.Renderer, b bulletin.Bulletin) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bulletin-*.pdf")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = r.Render(b, tmp); err != nil {
		return bulletin.NewRenderError(err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "moving bulletin in place")
}
