package validate

import (
	"errors"
	"testing"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"https allowed", "https://photos.example.com/house.jpg", nil},
		{"http allowed", "http://photos.example.com/house.jpg", nil},
		{"ftp rejected", "ftp://photos.example.com/house.jpg", ErrDisallowedScheme},
		{"no hostname", "https://", ErrInvalidURL},
		{"empty", "", ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImageURL(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
