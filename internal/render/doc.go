// Package render draws one report card per student.
//
// Two engines implement Renderer: PDFRenderer draws the page directly with
// go-pdf/fpdf and is the default, ChromeRenderer lays the same card out in
// HTML and prints it with headless Chrome. Both place elements according to
// a Layout, whose coordinates are PDF points measured from the bottom-left
// corner of the page.
package render
