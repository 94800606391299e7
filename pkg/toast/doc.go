// Package toast delivers user-facing alerts to the browser.
//
// Alerts travel as client events over the session connection rather than as
// part of the rendered HTML, so they fire exactly once. The thin client
// re-dispatches them as a "clouddrop:alert" CustomEvent on window; the
// default listener shows the message with alert(), and pages may install
// their own listener and call preventDefault to use a toast library instead:
//
//	window.addEventListener("clouddrop:alert", (e) => {
//	    e.preventDefault();
//	    showToast(e.detail.level, e.detail.message);
//	});
//
// Server side:
//
//	toast.Warning(session, "Please upload a file!")
//
// Alerts adapts an Emitter to the uploader's Alerter interface.
package toast
