package browser

// JavaScript injected into tracked pages. The hook script installs once per
// document: a passive wheel listener feeds the delta buffer the Go side
// drains, and a capturing blocker freezes scrolling while an interstitial is
// mounted. Everything lives under window.__scrollstop* so a reload signal
// can tear it down cleanly.

const hookJS = `
() => {
	if (window.__scrollstopHooked) return true;
	window.__scrollstopHooked = true;
	window.__scrollstopDeltas = [];
	window.__scrollstopLeave = false;
	window.__scrollstopBlocked = false;

	window.addEventListener('wheel', (ev) => {
		const d = Math.abs(ev.deltaY || 0);
		if (d > 0) window.__scrollstopDeltas.push(d);
	}, { passive: true });

	const block = (ev) => {
		if (window.__scrollstopBlocked) {
			ev.preventDefault();
			ev.stopPropagation();
		}
	};
	window.addEventListener('wheel', block, { passive: false });
	window.addEventListener('touchmove', block, { passive: false });
	return true;
}
`

// drainJS empties the delta buffer and reports the leave-now click. The
// hooked flag doubles as a navigation detector: a fresh document has no hook
// and the page watch exits so the manager can re-attach from scratch.
const drainJS = `
() => {
	const hooked = window.__scrollstopHooked === true;
	const deltas = Array.isArray(window.__scrollstopDeltas) ? window.__scrollstopDeltas : [];
	window.__scrollstopDeltas = [];
	const leave = window.__scrollstopLeave === true;
	window.__scrollstopLeave = false;
	return { hooked, deltas, leave };
}
`

// overlayJS mounts the interstitial. Arguments: variant ("warn"|"lock"),
// siteKey, message line, countdown seconds.
const overlayJS = `
(variant, site, message, seconds) => {
	if (document.getElementById('scroll-stop-warning')) return;
	window.__scrollstopBlocked = true;

	const overlay = document.createElement('div');
	overlay.id = 'scroll-stop-warning';
	overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);z-index:2147483647;display:flex;align-items:center;justify-content:center;font-family:-apple-system,BlinkMacSystemFont,sans-serif;';

	const card = document.createElement('div');
	card.style.cssText = 'padding:40px 50px;border-radius:20px;text-align:center;color:white;max-width:400px;background:' +
		(variant === 'lock' ? 'linear-gradient(135deg,#f5576c 0%,#f093fb 100%)' : 'linear-gradient(135deg,#667eea 0%,#764ba2 100%)');

	const icon = document.createElement('div');
	icon.style.cssText = 'font-size:64px;margin-bottom:16px;';
	icon.textContent = variant === 'lock' ? '\u{1F512}' : '\u{1F6D1}';

	const motto = document.createElement('p');
	motto.style.cssText = 'font-size:20px;font-weight:600;line-height:1.4;margin:20px 0;';
	motto.textContent = variant === 'lock'
		? 'What are you doing here? Does the work match the ambition?'
		: 'Dial it in. Does the work match the ambition?';

	const info = document.createElement('p');
	info.style.cssText = 'background:rgba(255,255,255,0.2);padding:12px 16px;border-radius:10px;font-size:14px;margin:16px 0;';
	info.textContent = message;

	const bar = document.createElement('div');
	bar.style.cssText = 'height:8px;background:rgba(255,255,255,0.3);border-radius:4px;margin:20px 0;overflow:hidden;';
	const fill = document.createElement('div');
	fill.id = 'scroll-stop-progress-bar';
	fill.style.cssText = 'height:100%;background:white;border-radius:4px;width:100%;transition:width 1s linear;';
	bar.appendChild(fill);

	const redirectLine = document.createElement('p');
	redirectLine.style.cssText = 'font-size:14px;opacity:0.8;';
	redirectLine.innerHTML = 'Redirecting in <span id="scroll-stop-countdown">' + seconds + '</span> seconds...';

	const btn = document.createElement('button');
	btn.id = 'scroll-stop-redirect-now';
	btn.style.cssText = 'margin-top:20px;padding:14px 32px;font-size:16px;font-weight:600;background:white;border:none;border-radius:10px;cursor:pointer;color:' +
		(variant === 'lock' ? '#f5576c' : '#667eea');
	btn.textContent = variant === 'lock' ? 'Back to What Matters' : 'Get Back on Track';
	btn.addEventListener('click', () => { window.__scrollstopLeave = true; });

	card.append(icon, motto, info, bar, redirectLine, btn);
	overlay.appendChild(card);
	document.body.appendChild(overlay);
}
`

// countdownJS reflects the seconds left and shrinks the proportional bar.
const countdownJS = `
(seconds, total) => {
	const el = document.getElementById('scroll-stop-countdown');
	if (el) el.textContent = String(seconds);
	const bar = document.getElementById('scroll-stop-progress-bar');
	if (bar) bar.style.width = ((seconds / total) * 100) + '%';
}
`

// indicatorJS creates or refreshes the persistent budget indicator in the
// page corner. Arguments: remaining px, used fraction (0..1), chances left.
const indicatorJS = `
(remainingPx, used, chances) => {
	let el = document.getElementById('scroll-stop-indicator');
	if (!el) {
		el = document.createElement('div');
		el.id = 'scroll-stop-indicator';
		el.style.cssText = 'position:fixed;bottom:20px;right:20px;color:white;padding:12px 18px;border-radius:12px;font-family:-apple-system,BlinkMacSystemFont,sans-serif;font-size:14px;font-weight:500;z-index:2147483646;';
		document.body.appendChild(el);
	}
	el.style.background = used >= 0.8
		? 'linear-gradient(135deg,#f093fb 0%,#f5576c 100%)'
		: 'linear-gradient(135deg,#667eea 0%,#764ba2 100%)';
	const pct = Math.min(used * 100, 100);
	el.innerHTML =
		'<div style="font-weight:600">\u{1F6D1} ' + Math.round(remainingPx) + ' px left</div>' +
		'<div style="font-size:11px;opacity:0.85;margin-top:4px">' + chances + (chances === 1 ? ' block' : ' blocks') + ' left today</div>' +
		'<div style="height:4px;background:rgba(255,255,255,0.3);border-radius:2px;margin-top:8px;overflow:hidden">' +
		'<div style="height:100%;background:white;border-radius:2px;width:' + pct + '%"></div></div>';
}
`

// unmountJS removes everything the hook and overlays added, and unfreezes
// scrolling.
const unmountJS = `
() => {
	window.__scrollstopBlocked = false;
	const overlay = document.getElementById('scroll-stop-warning');
	if (overlay) overlay.remove();
	const indicator = document.getElementById('scroll-stop-indicator');
	if (indicator) indicator.remove();
}
`
