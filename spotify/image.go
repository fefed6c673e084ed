package spotify

import (
	"context"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Image wraps a native image. Images load asynchronously; Wait blocks until
// the load completes.
type Image struct {
	handle
	token  uintptr
	loaded *waiter
}

// adoptImage wraps an owned image from a create call and registers its load
// callback. The gate must be held.
func (s *Session) adoptImage(h native.Handle, op string) (*Image, error) {
	if err := created(resource.KindImage, op, h); err != nil {
		return nil, err
	}
	lib := s.binding.lib
	return s.images.Adopt(h, func(h native.Handle) (*Image, error) {
		token, w := s.binding.pending.add()
		if err := lib.ImageAddLoadCallback(h, token).Err("sp_image_add_load_callback"); err != nil {
			s.binding.pending.drop(token)
			return nil, err
		}
		img := &Image{token: token, loaded: w}
		img.init(resource.KindImage, h, s, s.images.Remove)
		return img, nil
	}, lib.ImageRelease)
}

// Image returns the image with the given id.
func (s *Session) Image(id []byte) (*Image, error) {
	if len(id) != native.ImageIDSize {
		return nil, errors.InvalidInput(errors.PhaseResource, "image id must be 20 bytes")
	}
	var img *Image
	err := s.call("image", func(lib native.Library, h native.Handle) error {
		var err error
		img, err = s.adoptImage(lib.ImageCreate(h, id), "sp_image_create")
		return err
	})
	return img, err
}

// ImageFromLink returns the image a link of type LinkImage points to.
func (s *Session) ImageFromLink(l *Link) (*Image, error) {
	var img *Image
	err := s.call("image_from_link", func(lib native.Library, h native.Handle) error {
		if err := l.life.Check("image"); err != nil {
			return err
		}
		var err error
		img, err = s.adoptImage(lib.ImageCreateFromLink(h, l.life.Handle()), "sp_image_create_from_link")
		return err
	})
	return img, err
}

// IsLoaded reports whether the image data has arrived.
func (img *Image) IsLoaded() (bool, error) {
	return get(&img.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.ImageIsLoaded(h)
	})
}

// Status returns the load status; IsLoading until the image arrives.
func (img *Image) Status() (native.Code, error) {
	return get(&img.handle, "error", func(lib native.Library, h native.Handle) native.Code {
		return lib.ImageError(h)
	})
}

// Format returns the encoding of Data.
func (img *Image) Format() (native.ImageFormat, error) {
	return get(&img.handle, "format", func(lib native.Library, h native.Handle) native.ImageFormat {
		return lib.ImageFormat(h)
	})
}

// Data returns a copy of the encoded image, nil before it has loaded.
func (img *Image) Data() ([]byte, error) {
	return get(&img.handle, "data", func(lib native.Library, h native.Handle) []byte {
		if d := lib.ImageData(h); len(d) > 0 {
			return append([]byte(nil), d...)
		}
		return nil
	})
}

// ID returns a copy of the image id.
func (img *Image) ID() ([]byte, error) {
	return get(&img.handle, "id", func(lib native.Library, h native.Handle) []byte {
		return append([]byte(nil), lib.ImageID(h)...)
	})
}

// Wait drives the session until the image has loaded. It returns an
// AsyncFailure when the load failed.
func (img *Image) Wait(ctx context.Context) error {
	return waitLoaded(ctx, &img.handle, img.loaded, "image", func(lib native.Library, h native.Handle) (bool, native.Code) {
		return lib.ImageIsLoaded(h), lib.ImageError(h)
	})
}

// Dispose removes the load callback and releases the image. It is
// idempotent.
func (img *Image) Dispose() error {
	pending := img.binding.pending
	return img.dispose(disposal{
		detach: func(lib native.Library, h native.Handle) {
			lib.ImageRemoveLoadCallback(h, img.token)
			pending.drop(img.token)
		},
		release: img.binding.lib.ImageRelease,
	})
}
