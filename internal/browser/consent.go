package browser

// consentScript clicks the first visible cookie/consent accept control and
// reports whether it found one.
const consentScript = `(() => {
	const byId = document.querySelector('#onetrust-accept-btn-handler');
	if (byId) { byId.click(); return true; }
	const words = ['accept all', 'accept', 'agree', 'i agree', 'allow all', 'got it'];
	const buttons = Array.from(document.querySelectorAll('button, [role="button"], a.button'));
	for (const b of buttons) {
		const text = (b.innerText || b.textContent || '').trim().toLowerCase();
		if (!text || text.length > 40) continue;
		if (words.some(w => text === w || text.startsWith(w + ' '))) {
			if (b.offsetParent === null) continue;
			b.click();
			return true;
		}
	}
	return false;
})()`
