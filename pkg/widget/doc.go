// Package widget composes the drop zone, the upload controller and the
// clipboard panel into the CloudDrop widget, and renders it as HTML.
//
// A Widget is owned by one session. Client events (drag hover, upload and
// copy clicks) arrive through HandleEvent, dropped files through Drop, and
// every state change is reported through OnChange so the owner can push a
// fresh render.
package widget
