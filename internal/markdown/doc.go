// Package markdown converts page Markdown into HTML with goldmark and splits
// optional YAML front matter from the body.
package markdown
