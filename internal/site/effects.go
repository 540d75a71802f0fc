package site

import "github.com/unlockenglish/tutorsite/internal/navigation"

// pageEffects captures the outputs of the navigation machine for one
// response. A pushed URL that differs from the request becomes a redirect.
type pageEffects struct {
	title string
	url   string
	meta  string
}

var _ navigation.Effects = (*pageEffects)(nil)

func (p *pageEffects) SetTitle(title string) { p.title = title }
func (p *pageEffects) PushURL(u string) { p.url = u }
func (p *pageEffects) SetMetaDescription(d string) { p.meta = d }
