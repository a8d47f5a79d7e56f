package teams

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dknys/teams_agent/internal/locate"
)

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// cssQueries renders the CSS-expressible selectors of a set for use
// inside one script. Text-equality selectors have no CSS form and are
// skipped here.
func cssQueries(set locate.SelectorSet) string {
	queries := make([]string, 0, len(set))
	for _, sel := range set {
		switch sel.Kind {
		case locate.KindTestID:
			queries = append(queries, jsString("[data-tid=\""+sel.Value+"\"]"))
		case locate.KindLabelContains:
			queries = append(queries, jsString("[aria-label*=\""+sel.Value+"\"]"))
		case locate.KindCSS:
			queries = append(queries, jsString(sel.Value))
		}
	}
	return "[" + strings.Join(queries, ",") + "]"
}

// jsListTeamNames collects team display names: first selector with any
// matches wins, accessible label preferred over visible text, DOM order
// preserved.
func jsListTeamNames() string {
	return locate.Envelope(`var queries = ` + cssQueries(TeamNameSelectors) + `;
var names = [];
for (var i = 0; i < queries.length; i++) {
var els = Array.from(document.querySelectorAll(queries[i]));
if (els.length === 0) { continue; }
for (var j = 0; j < els.length; j++) {
var el = els[j];
var name = el.getAttribute('aria-label') || (el.textContent || '');
name = name.trim();
if (name) { names.push(name); }
}
break;
}
return {ok:true, data:{names: names}};`)
}

// jsClickTeamByName clicks the team element whose name equals the
// already-matched display name.
func jsClickTeamByName(name string) string {
	return locate.Envelope(`var queries = ` + cssQueries(TeamNameSelectors) + `;
var want = ` + jsString(name) + `.normalize('NFKC').toLowerCase().trim();
for (var i = 0; i < queries.length; i++) {
var els = Array.from(document.querySelectorAll(queries[i]));
if (els.length === 0) { continue; }
for (var j = 0; j < els.length; j++) {
var el = els[j];
var name = (el.getAttribute('aria-label') || el.textContent || '').normalize('NFKC').toLowerCase().trim();
if (name !== want) { continue; }
var clickable = el.closest('[role="treeitem"], a, button') || el;
clickable.scrollIntoView({block:'center'});
clickable.click();
return {ok:true, data:{clicked:true}};
}
break;
}
return {ok:true, data:{clicked:false}};`)
}

// jsFillInput sets the first matching input's value the way the
// framework expects: through the native setter, followed by input and
// change events.
func jsFillInput(set locate.SelectorSet, value string) string {
	return locate.Envelope(fmt.Sprintf(`var queries = %s;
var el = null;
for (var i = 0; i < queries.length && !el; i++) {
el = document.querySelector(queries[i]);
}
if (!el) { return {ok:true, data:{filled:false}}; }
var setter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, 'value').set;
setter.call(el, %s);
el.dispatchEvent(new Event('input', {bubbles:true}));
el.dispatchEvent(new Event('change', {bubbles:true}));
return {ok:true, data:{filled:true}};`, cssQueries(set), jsString(value)))
}
