package locate

import "fmt"

// The injected scripts evaluate to an envelope object so that page-side
// failures surface as data instead of chromedp exceptions.

// Envelope wraps a script body in an IIFE with the try/catch envelope.
// Other packages building page scripts share it so every evaluation
// decodes the same way.
func Envelope(body string) string {
	return `(function(){
try {
` + body + `
} catch (err) {
return {ok:false,error_message:String(err && err.message || err)};
}
})()`
}

// jsCandidates emits a JS snippet that binds `els` to the candidate
// elements for one selector, in DOM order.
func jsCandidates(sel Selector) string {
	switch sel.Kind {
	case KindTestID:
		return fmt.Sprintf(`var els = Array.from(document.querySelectorAll('[data-tid=' + JSON.stringify(%s) + ']'));`, jsString(sel.Value))
	case KindLabelContains:
		return fmt.Sprintf(`var needle = %s.toLowerCase();
var els = Array.from(document.querySelectorAll('[aria-label]')).filter(function(el){
return (el.getAttribute('aria-label') || '').toLowerCase().indexOf(needle) !== -1;
});`, jsString(sel.Value))
	case KindTextEquals:
		return fmt.Sprintf(`var want = %s;
var els = Array.from(document.querySelectorAll('button, [role="button"]')).filter(function(el){
return (el.textContent || '').trim() === want;
});`, jsString(sel.Value))
	default:
		return fmt.Sprintf(`var els = Array.from(document.querySelectorAll(%s));`, jsString(sel.Value))
	}
}

// jsCount returns the number of elements the selector currently matches.
func jsCount(sel Selector) string {
	return Envelope(jsCandidates(sel) + `
return {ok:true, data:{count: els.length}};`)
}

// jsProbe reports whether candidate i exists and is visible and enabled.
func jsProbe(sel Selector, i int) string {
	return Envelope(jsCandidates(sel) + fmt.Sprintf(`
var el = els[%d];
if (!el) { return {ok:true, data:{exists:false, visible:false}}; }
var style = window.getComputedStyle(el);
var rects = el.getClientRects();
var visible = rects.length > 0 && style.visibility !== 'hidden' && style.display !== 'none';
var enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
return {ok:true, data:{exists:true, visible: visible && enabled}};`, i))
}

// jsClick dispatches a click on candidate i. With force set the candidate
// is clicked regardless of its visibility state.
func jsClick(sel Selector, i int, force bool) string {
	return Envelope(jsCandidates(sel) + fmt.Sprintf(`
var el = els[%d];
if (!el) { return {ok:true, data:{clicked:false}}; }
var force = %t;
if (!force) {
var style = window.getComputedStyle(el);
if (el.getClientRects().length === 0 || style.visibility === 'hidden' || style.display === 'none') {
return {ok:true, data:{clicked:false}};
}
if (el.disabled || el.getAttribute('aria-disabled') === 'true') {
return {ok:true, data:{clicked:false}};
}
}
el.scrollIntoView({block:'center', inline:'center'});
el.click();
return {ok:true, data:{clicked:true}};`, i, force))
}
