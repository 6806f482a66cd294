package contracts

import (
	"net/url"
	"path"
	"strings"
)

type Manifest struct {
	UpdateContent string
	MainProcess   string
	MainExe       string
	Items         []Artifact
}

// UnescapedContent returns the update notes with the literal escape
// sequences some publishers leave in the text turned into real characters.
func (this Manifest) UnescapedContent() string {
	return contentUnescaper.Replace(this.UpdateContent)
}

var contentUnescaper = strings.NewReplacer(
	`\r\n`, "\n",
	`\n`, "\n",
	`\r`, "\n",
	`\t`, "\t",
	`\\`, `\`,
)

type Artifact struct {
	Name            string
	URL             string
	Checksum        string
	IsArchive       bool
	ArchivePassword string
	ExtractName     string
	SavePath        string
}

// FileName is the name the artifact is installed under.
func (this Artifact) FileName() string {
	if this.ExtractName != "" {
		return this.ExtractName
	}
	if this.Name != "" {
		return this.Name
	}
	return this.remoteFileName()
}

func (this Artifact) DisplayName() string {
	if this.Name != "" {
		return this.Name
	}
	if this.ExtractName != "" {
		return this.ExtractName
	}
	if name := this.remoteFileName(); name != "" {
		return name
	}
	return this.URL
}

// Extension of the remote path (".tmp" when there is none), used to name
// the staged download so archive formats remain recognizable.
func (this Artifact) Extension() string {
	extension := path.Ext(this.remoteFileName())
	if extension == "" {
		return ".tmp"
	}
	return extension
}

func (this Artifact) remoteFileName() string {
	address, err := url.Parse(this.URL)
	if err != nil {
		return ""
	}
	name := path.Base(address.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

type StagedFile struct {
	Source string
	Target string
}
