// services/registration_form.go - Public registration form validation
package services

import (
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
)

// PlayerSlots is the number of optional players after the captain (players 2 to 5).
const PlayerSlots = 4

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Player is one optional roster slot of the public form
type Player struct {
	Name string
	UID  string
}

// RegistrationForm is what a team captain submits on the public site.
type RegistrationForm struct {
	TeamName     string
	College      string
	CaptainName  string
	CaptainUID   string
	CaptainEmail string
	CaptainPhone string
	Players      [PlayerSlots]Player
	AcceptTerms  bool
}

// Upload is the college ID file attached to the form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

// Validate reports every missing or malformed field at once.
// hasFile tells whether a college ID was attached.
func (f RegistrationForm) Validate(hasFile bool) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.TeamName) == "" {
		errs["team_name"] = "Team name is required"
	}
	if strings.TrimSpace(f.College) == "" {
		errs["college"] = "College name is required"
	}
	if strings.TrimSpace(f.CaptainName) == "" {
		errs["captain_name"] = "Captain name is required"
	}
	if strings.TrimSpace(f.CaptainUID) == "" {
		errs["captain_uid"] = "Captain UID is required"
	}
	if strings.TrimSpace(f.CaptainEmail) == "" {
		errs["captain_email"] = "Email is required"
	} else if !emailPattern.MatchString(f.CaptainEmail) {
		errs["captain_email"] = "Invalid email format"
	}
	if strings.TrimSpace(f.CaptainPhone) == "" {
		errs["captain_phone"] = "WhatsApp number is required"
	}
	if !hasFile {
		errs["college_id"] = "College ID is required"
	}
	if !f.AcceptTerms {
		errs["terms"] = "You must agree to the terms"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TeamMembers renders the filled player slots as "name (uid)", in slot order.
func (f RegistrationForm) TeamMembers() []string {
	members := []string{}
	for _, p := range f.Players {
		name := strings.TrimSpace(p.Name)
		uid := strings.TrimSpace(p.UID)
		if name == "" && uid == "" {
			continue
		}
		members = append(members, fmt.Sprintf("%s (%s)", name, uid))
	}
	return members
}

// CheckUpload enforces the size limit and the accepted file kinds (images and PDF).
func CheckUpload(u Upload, maxBytes int64) error {
	if maxBytes > 0 && u.Size > maxBytes {
		return &UploadTooLargeError{MaxBytes: maxBytes}
	}
	contentType := uploadContentType(u)
	if strings.HasPrefix(contentType, "image/") || contentType == "application/pdf" {
		return nil
	}
	return ErrUnsupportedUpload
}

func uploadContentType(u Upload) string {
	ct := u.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(path.Ext(u.Filename)))
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}

// ParseCheckbox reads an HTML checkbox value
func ParseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
