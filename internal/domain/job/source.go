package job

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Batch is what one source yields
type Batch struct {
	Jobs         []domain.Job
	Applications []domain.Application
}

// Source is an external feed of job postings and applications (an ATS
// export, a careers-site dump, a fixture file)
type Source interface {
	Name() string
	Load(ctx context.Context) (Batch, error)
}

type jobRecord struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"company_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location"`
	CreatedBy   string   `json:"created_by"`
}

type applicationRecord struct {
	ID              string  `json:"id"`
	JobID           string  `json:"job_id"`
	ApplicantID     string  `json:"applicant_id"`
	ApplicantEmail  string  `json:"applicant_email"`
	ApplicantName   string  `json:"applicant_name"`
	ApplicantPhone  string  `json:"applicant_phone"`
	ResumeURL       string  `json:"resume_url"`
	MatchPercentage float64 `json:"match_percentage"`
}

type document struct {
	Jobs         []jobRecord         `json:"jobs"`
	Applications []applicationRecord `json:"applications"`
}

// JSONSource reads {"jobs": [...], "applications": [...]} documents
type JSONSource struct {
	name string
	open func() (io.ReadCloser, error)
}

// FileSource reads a JSON document from path
func FileSource(path string) *JSONSource {
	return &JSONSource{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// ReaderSource reads a JSON document from r
func ReaderSource(name string, r io.Reader) *JSONSource {
	return &JSONSource{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *JSONSource) Name() string { return s.name }

func (s *JSONSource) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	rc, err := s.open()
	if err != nil {
		return Batch{}, fmt.Errorf("open %s: %w", s.name, err)
	}
	defer func() { _ = rc.Close() }()

	var doc document
	dec := json.NewDecoder(rc)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Batch{}, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, s.name, err)
	}

	b := Batch{
		Jobs:         make([]domain.Job, 0, len(doc.Jobs)),
		Applications: make([]domain.Application, 0, len(doc.Applications)),
	}
	for _, r := range doc.Jobs {
		b.Jobs = append(b.Jobs, domain.Job{
			ID:          r.ID,
			CompanyID:   r.CompanyID,
			Title:       r.Title,
			Description: r.Description,
			Skills:      r.Skills,
			Location:    r.Location,
			CreatedBy:   r.CreatedBy,
		})
	}
	for _, r := range doc.Applications {
		b.Applications = append(b.Applications, domain.Application{
			ID:              r.ID,
			JobID:           r.JobID,
			ApplicantID:     r.ApplicantID,
			ApplicantEmail:  r.ApplicantEmail,
			ApplicantName:   r.ApplicantName,
			ApplicantPhone:  r.ApplicantPhone,
			ResumeURL:       r.ResumeURL,
			MatchPercentage: r.MatchPercentage,
		})
	}
	return b, nil
}
