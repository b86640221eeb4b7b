package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"gopkg.in/yaml.v3"
)

//go:embed members.yaml
var defaultMembers []byte

type seedFile struct {
	Members []models.CreateMemberRequest `yaml:"members"`
}

type seedReport struct {
	Created int
	Skipped int
}

func parseSeedFile(data []byte) ([]models.CreateMemberRequest, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if len(file.Members) == 0 {
		return nil, fmt.Errorf("seed data contains no members")
	}
	return file.Members, nil
}

// seedMembers creates each member with its own copy of the placeholder avatar.
// Members whose email is already taken are skipped.
func seedMembers(ctx context.Context, service *services.MemberService, store *uploads.Store, members []models.CreateMemberRequest) (seedReport, error) {
	avatar, err := placeholderAvatar(256)
	if err != nil {
		return seedReport{}, err
	}

	var report seedReport
	for i := range members {
		req := members[i]

		filename, err := store.Save(ctx, bytes.NewReader(avatar), "image/png", ".png")
		if err != nil {
			return report, fmt.Errorf("failed to store avatar for %s: %w", req.Email, err)
		}

		member, err := service.CreateMember(ctx, &req, filename)
		switch {
		case apperrors.Is(err, apperrors.KindDuplicate):
			slog.Info("Member already exists, skipping", "email", req.Email)
			report.Skipped++
		case err != nil:
			return report, fmt.Errorf("failed to seed %s: %w", req.Email, err)
		default:
			slog.Info("Seeded member", "member_id", member.ID, "name", member.Name)
			report.Created++
		}
	}
	return report, nil
}

// placeholderAvatar renders a size x size two-tone PNG
func placeholderAvatar(size int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	background := color.RGBA{R: 0xdb, G: 0xea, B: 0xfe, A: 0xff}
	foreground := color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}

	center := size / 2
	radius := size / 4
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-center, y-center+size/10
			head := dx*dx+(y-center+size/8)*(y-center+size/8) <= radius*radius/2
			body := y > center+size/8 && dx*dx+dy*dy/4 <= radius*radius*2
			if head || body {
				img.Set(x, y, foreground)
			} else {
				img.Set(x, y, background)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
