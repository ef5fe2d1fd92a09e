package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dustin/go-humanize"
)

// ========================================
// FILTER QUERY
// ========================================

const (
	FilterMediaAll   = "all"
	FilterMediaAudio = "audio"
	FilterMediaImage = "image"

	FilterStatusAll       = "all"
	FilterStatusPublished = "published"
	FilterStatusDraft     = "draft"
)

// FilterQuery is the input of the filter engine. The public browse
// view uses the reduced predicate (status forced to published); the
// admin management view sets all three.
type FilterQuery struct {
	SearchTerm string `json:"search_term"`
	MediaKind  string `json:"media_kind"` // all | audio | image
	Status     string `json:"status"`     // all | published | draft
}

func (q FilterQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.MediaKind,
			validation.In(FilterMediaAll, FilterMediaAudio, FilterMediaImage).Error("media kind must be all, audio or image"),
		),
		validation.Field(&q.Status,
			validation.In(FilterStatusAll, FilterStatusPublished, FilterStatusDraft).Error("status must be all, published or draft"),
		),
	)
}

// ========================================
// MUTATION DTOs
// ========================================

// FileUpload carries the binary payload of a new asset.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateAssetRequest is the metadata supplied by the uploader. Storage
// key, file size, uploader and timestamps are assigned server-side.
type CreateAssetRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"is_published"`
}

func (r CreateAssetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Category,
			validation.When(r.Category != "",
				validation.By(func(interface{}) error {
					if !IsValidCategory(r.Category) {
						return ErrInvalidCategory
					}
					return nil
				}),
			),
		),
		validation.Field(&r.Tags, validation.Length(0, 20)),
	)
}

// UpdateAssetRequest is a partial update. Nil pointers leave the field
// unchanged. Version must carry the caller's last-observed asset
// version; the update is rejected when it no longer matches.
type UpdateAssetRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"` // nil = unchanged
	IsPublished *bool    `json:"is_published"`
	Version     int      `json:"version"`
}

func (r UpdateAssetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil,
				validation.By(func(interface{}) error {
					if *r.Title == "" {
						return ErrTitleRequired
					}
					if len(*r.Title) > 255 {
						return ErrTitleTooLong
					}
					return nil
				}),
			),
		),
		validation.Field(&r.Category,
			validation.When(r.Category != nil && *r.Category != "",
				validation.By(func(interface{}) error {
					if !IsValidCategory(*r.Category) {
						return ErrInvalidCategory
					}
					return nil
				}),
			),
		),
		validation.Field(&r.Version,
			validation.Required.Error("version is required"),
			validation.Min(1),
		),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

type AssetResponse struct {
	Asset
	FileSizeHuman string `json:"file_size_human"`
}

func ToAssetResponse(a Asset) AssetResponse {
	resp := AssetResponse{Asset: a, FileSizeHuman: "Unknown"}
	if a.FileSize != nil {
		resp.FileSizeHuman = humanize.Bytes(uint64(*a.FileSize))
	}
	return resp
}

func ToAssetResponses(assets []Asset) []AssetResponse {
	responses := make([]AssetResponse, len(assets))
	for i, a := range assets {
		responses[i] = ToAssetResponse(a)
	}
	return responses
}
