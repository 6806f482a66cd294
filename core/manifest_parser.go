package core

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// ParseManifest decodes the update document. Only the shapes the manifest
// uses are understood: flat strings, booleans, and a list of flat objects.
func ParseManifest(raw string) (manifest contracts.Manifest, err error) {
	fields, err := parseObject(raw)
	if err != nil {
		return contracts.Manifest{}, err
	}

	if manifest.UpdateContent, err = stringField(fields, "update_content"); err != nil {
		return contracts.Manifest{}, err
	}
	if manifest.MainProcess, err = stringField(fields, "main_process"); err != nil {
		return contracts.Manifest{}, err
	}
	if manifest.MainExe, err = stringField(fields, "main_exe"); err != nil {
		return contracts.Manifest{}, err
	}
	if manifest.Items, err = listField(fields, "list"); err != nil {
		return contracts.Manifest{}, err
	}
	if err = manifest.Validate(); err != nil {
		return contracts.Manifest{}, formatError(err.Error())
	}
	return manifest, nil
}

func parseArtifact(raw string) (item contracts.Artifact, err error) {
	fields, err := parseObject(raw)
	if err != nil {
		return item, err
	}
	if item.Name, err = stringField(fields, "name"); err != nil {
		return item, err
	}
	if item.URL, err = stringField(fields, "url"); err != nil {
		return item, err
	}
	if item.Checksum, err = stringField(fields, "md5"); err != nil {
		return item, err
	}
	if item.ArchivePassword, err = stringField(fields, "zip_pass"); err != nil {
		return item, err
	}
	if item.ExtractName, err = stringField(fields, "extract_name"); err != nil {
		return item, err
	}
	if item.SavePath, err = stringField(fields, "save_path"); err != nil {
		return item, err
	}
	item.IsArchive = boolField(fields, "is_zip")
	return item, nil
}

func stringField(fields map[string]string, key string) (string, error) {
	raw, found := fields[key]
	if !found || raw == "null" || !strings.HasPrefix(raw, `"`) {
		return "", nil
	}
	return unquote(raw)
}

func boolField(fields map[string]string, key string) bool {
	return fields[key] == "true"
}

func listField(fields map[string]string, key string) ([]contracts.Artifact, error) {
	items := make([]contracts.Artifact, 0)
	raw, found := fields[key]
	if !found || raw == "null" {
		return items, nil
	}
	elements, err := splitArray(raw)
	if err != nil {
		return nil, err
	}
	for _, element := range elements {
		item, err := parseArtifact(element)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// parseObject maps each key of a flat object to the raw text of its value.
// Nested containers and strings are skipped over as opaque values, so keys
// are only ever matched at the object's own level. The first occurrence of
// a duplicated key wins.
func parseObject(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") || len(raw) < 2 {
		return nil, formatError("document must be enclosed in braces")
	}
	fields := make(map[string]string)
	scanner := &documentScanner{text: raw[1 : len(raw)-1]}
	for {
		scanner.skipSpace()
		if scanner.done() {
			return fields, nil
		}
		key, err := scanner.key()
		if err != nil {
			return nil, err
		}
		value, err := scanner.value()
		if err != nil {
			return nil, err
		}
		if _, found := fields[key]; !found {
			fields[key] = value
		}
		if err = scanner.separator(); err != nil {
			return nil, err
		}
	}
}

// splitArray returns the raw text of each element of an array.
func splitArray(raw string) (elements []string, err error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") || len(raw) < 2 {
		return nil, formatError("list must be an array")
	}
	scanner := &documentScanner{text: raw[1 : len(raw)-1]}
	for {
		scanner.skipSpace()
		if scanner.done() {
			return elements, nil
		}
		element, err := scanner.value()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
		if err = scanner.separator(); err != nil {
			return nil, err
		}
	}
}

type documentScanner struct {
	text     string
	position int
}

func (this *documentScanner) done() bool {
	return this.position >= len(this.text)
}

func (this *documentScanner) skipSpace() {
	for !this.done() && isSpace(this.text[this.position]) {
		this.position++
	}
}

func (this *documentScanner) key() (string, error) {
	if this.text[this.position] != '"' {
		return "", formatError("expected a quoted key at offset " + strconv.Itoa(this.position))
	}
	quoted, err := this.quoted()
	if err != nil {
		return "", err
	}
	this.skipSpace()
	if this.done() || this.text[this.position] != ':' {
		return "", formatError("expected ':' after key " + quoted)
	}
	this.position++
	return unquote(quoted)
}

func (this *documentScanner) value() (string, error) {
	this.skipSpace()
	if this.done() {
		return "", formatError("missing value")
	}
	switch this.text[this.position] {
	case '"':
		return this.quoted()
	case '{', '[':
		return this.container()
	default:
		return this.literal(), nil
	}
}

func (this *documentScanner) separator() error {
	this.skipSpace()
	if this.done() {
		return nil
	}
	if this.text[this.position] != ',' {
		return formatError("expected ',' at offset " + strconv.Itoa(this.position))
	}
	this.position++
	this.skipSpace()
	if this.done() {
		return formatError("trailing ','")
	}
	return nil
}

// quoted consumes a string literal, honoring escaped quotes, and returns
// it with its quotes.
func (this *documentScanner) quoted() (string, error) {
	start := this.position
	for x := start + 1; x < len(this.text); x++ {
		switch this.text[x] {
		case '\\':
			x++
		case '"':
			this.position = x + 1
			return this.text[start:this.position], nil
		}
	}
	return "", formatError("unterminated string")
}

// container consumes a balanced object or array. Delimiters inside string
// literals are ignored.
func (this *documentScanner) container() (string, error) {
	start := this.position
	depth := 0
	inString := false
	for x := start; x < len(this.text); x++ {
		character := this.text[x]
		if inString {
			if character == '\\' {
				x++
			} else if character == '"' {
				inString = false
			}
			continue
		}
		switch character {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				this.position = x + 1
				return this.text[start:this.position], nil
			}
		}
	}
	return "", formatError("unterminated container")
}

func (this *documentScanner) literal() string {
	start := this.position
	for !this.done() && this.text[this.position] != ',' && !isSpace(this.text[this.position]) {
		this.position++
	}
	return this.text[start:this.position]
}

func unquote(quoted string) (string, error) {
	body := quoted[1 : len(quoted)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var builder strings.Builder
	for x := 0; x < len(body); x++ {
		if body[x] != '\\' || x+1 >= len(body) {
			builder.WriteByte(body[x])
			continue
		}
		x++
		switch body[x] {
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case 't':
			builder.WriteByte('\t')
		case 'b':
			builder.WriteByte('\b')
		case 'f':
			builder.WriteByte('\f')
		case 'u':
			code, err := codePoint(body, x+1)
			if err != nil {
				return "", err
			}
			x += 4
			if utf16.IsSurrogate(code) {
				if low, err := codePoint(body, x+3); err == nil && x+2 < len(body) && body[x+1:x+3] == `\u` {
					code = utf16.DecodeRune(code, low)
					x += 6
				}
			}
			builder.WriteRune(code)
		default:
			builder.WriteByte(body[x]) // covers \" \\ \/
		}
	}
	return builder.String(), nil
}

func codePoint(text string, start int) (rune, error) {
	if start+4 > len(text) {
		return 0, formatError("truncated unicode escape")
	}
	value, err := strconv.ParseUint(text[start:start+4], 16, 16)
	if err != nil {
		return 0, formatError("invalid unicode escape " + text[start:start+4])
	}
	return rune(value), nil
}

func isSpace(character byte) bool {
	return character == ' ' || character == '\t' || character == '\n' || character == '\r'
}

func formatError(reason string) error {
	return &contracts.FormatError{Reason: reason}
}
