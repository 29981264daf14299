package storage

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/filedepot/filedepot_server/internal/response"
	"github.com/filedepot/filedepot_server/internal/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const (
	fileField      = "file"
	dataField      = "data"
	belongsToField = "belongsTo"
	nameField      = "name"
)

var missingFileMessages = map[MediaType]string{
	MediaTypeVideo: "上传视屏错误",
	MediaTypeImage: "上传图片错误",
}

type Endpoints struct {
	service *Service
	prefix  string
}

var _ router.Module = (*Endpoints)(nil)

func NewEndpoints(service *Service, prefix string) *Endpoints {
	return &Endpoints{
		service: service,
		prefix:  prefix,
	}
}

func (e *Endpoints) Name() string {
	return "files"
}

func (e *Endpoints) Prefix() string {
	return e.prefix
}

func (e *Endpoints) Routes() []router.Route {
	return []router.Route{
		{Method: fasthttp.MethodPost, Path: "/video", Handler: e.UploadVideo},
		{Method: fasthttp.MethodPost, Path: "/image", Handler: e.UploadImage},
	}
}

func (e *Endpoints) UploadVideo(ctx *fasthttp.RequestCtx) error {
	return e.upload(ctx, MediaTypeVideo)
}

func (e *Endpoints) UploadImage(ctx *fasthttp.RequestCtx) error {
	return e.upload(ctx, MediaTypeImage)
}

func (e *Endpoints) upload(ctx *fasthttp.RequestCtx, mediaType MediaType) error {
	strategy, err := e.service.Strategy(mediaType)
	if err != nil {
		return err
	}
	missing := response.Fail(missingFileMessages[mediaType])

	form, err := ctx.MultipartForm()
	if err != nil {
		log.Warn().Err(err).Str("mediaType", string(mediaType)).Msg("Upload without multipart form")
		response.Write(ctx, missing)
		return nil
	}
	defer ctx.Request.RemoveMultipartFormFiles()

	files := form.File[fileField]
	if len(files) == 0 {
		response.Write(ctx, missing)
		return nil
	}
	if len(files) > strategy.MaxFiles {
		return ErrTooManyFiles
	}

	fileHeader := files[0]
	stored, err := e.service.Store(ctx, mediaType, &Upload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	})
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			log.Warn().Err(err).Str("mediaType", string(mediaType)).Msg("Upload rejected")
			response.Write(ctx, missing)
			return nil
		}
		return err
	}

	response.Write(ctx, response.Success(buildPayload(ctx.QueryArgs(), form, stored)))
	return nil
}

// buildPayload echoes the query parameters and adds the generated name plus
// whichever of data and belongsTo the caller supplied.
func buildPayload(args *fasthttp.Args, form *multipart.Form, stored *StoredFile) map[string]any {
	payload := make(map[string]any, args.Len()+3)
	args.VisitAll(func(key, value []byte) {
		k := string(key)
		v := string(value)
		switch existing := payload[k].(type) {
		case nil:
			payload[k] = v
		case string:
			payload[k] = []string{existing, v}
		case []string:
			payload[k] = append(existing, v)
		}
	})

	payload[nameField] = stored.Name
	if data := formValue(form, dataField); data != "" {
		payload[dataField] = RawValue(data)
	}
	if belongsTo := formValue(form, belongsToField); belongsTo != "" {
		payload[belongsToField] = belongsTo
	}
	return payload
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
