//go:build windows

package printer

import (
	"context"
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"

	"printerone/internal/model"
)

var (
	modWinspool       = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinterW  = modWinspool.NewProc("OpenPrinterW")
	procClosePrinter  = modWinspool.NewProc("ClosePrinter")
	procStartDoc      = modWinspool.NewProc("StartDocPrinterW")
	procEndDoc        = modWinspool.NewProc("EndDocPrinter")
	procStartPage     = modWinspool.NewProc("StartPagePrinter")
	procEndPage       = modWinspool.NewProc("EndPagePrinter")
	procWritePrinter  = modWinspool.NewProc("WritePrinter")
	procEnumPrinters  = modWinspool.NewProc("EnumPrintersW")
	procDocumentProps = modWinspool.NewProc("DocumentPropertiesW")
	procResetPrinterW = modWinspool.NewProc("ResetPrinterW")
)

type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

// devModeW is the fixed head of the Windows DEVMODEW structure, enough
// to reach the print fields this server sets.
type devModeW struct {
	DeviceName       [32]uint16
	SpecVersion      uint16
	DriverVersion    uint16
	Size             uint16
	DriverExtra      uint16
	Fields           uint32
	Orientation      int16
	PaperSize        int16
	PaperLength      int16
	PaperWidth       int16
	Scale            int16
	Copies           int16
	DefaultSource    int16
	PrintQuality     int16
	Color            int16
	Duplex           int16
	YResolution      int16
	TTOption         int16
	Collate          int16
	FormName         [32]uint16
	LogPixels        uint16
	BitsPerPel       uint32
	PelsWidth        uint32
	PelsHeight       uint32
	DisplayFlags     uint32
	DisplayFrequency uint32
	ICMMethod        uint32
	ICMIntent        uint32
	MediaType        uint32
	DitherType       uint32
	Reserved1        uint32
	Reserved2        uint32
	PanningWidth     uint32
	PanningHeight    uint32
}

// DM_* field selection bits.
const (
	dmOrientation  = 0x00000001
	dmPaperSize    = 0x00000002
	dmCopies       = 0x00000100
	dmColor        = 0x00000800
	dmDuplex       = 0x00001000
	dmPrintQuality = 0x00000400

	dmOut = 0x02 // DM_OUT_BUFFER
	dmIn  = 0x08 // DM_IN_BUFFER
)

type printerDefaults struct {
	Datatype *uint16
	DevMode  uintptr
	Access   uint32
}

// spoolerSend writes the job to a Windows print queue in RAW datatype,
// one document with one page per copy. The device mode is adjusted
// best-effort before the document starts; a settings failure never
// blocks the job.
func spoolerSend(ctx context.Context, name string, data []byte, settings *model.Settings) error {
	handle, err := openPrinter(name)
	if err != nil {
		return deviceErr(name, "open", err)
	}
	defer closePrinter(handle)

	applyDevMode(handle, name, settings)

	jobID, err := startDocPrinter(handle, "PrinterOne Job")
	if err != nil {
		return deviceErr(name, "start-doc", err)
	}
	defer endDocPrinter(handle, jobID)

	for i := 0; i < settings.CopyCount(); i++ {
		if err := ctx.Err(); err != nil {
			return deviceErr(name, "write", err)
		}
		if err := startPagePrinter(handle); err != nil {
			return deviceErr(name, "start-page", err)
		}
		if err := writePrinter(handle, data); err != nil {
			endPagePrinter(handle)
			return deviceErr(name, "write", err)
		}
		endPagePrinter(handle)
	}
	return nil
}

// applyDevMode fetches the queue's current device mode, overwrites the
// fields present in settings and pushes the result back. Every step is
// optional; on any failure the queue keeps its defaults.
func applyDevMode(handle windows.Handle, name string, settings *model.Settings) {
	if settings == nil {
		return
	}
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return
	}
	size, _, _ := procDocumentProps.Call(0, uintptr(handle), uintptr(unsafe.Pointer(namePtr)), 0, 0, 0)
	if int32(size) <= 0 {
		return
	}
	buf := make([]byte, size)
	r1, _, _ := procDocumentProps.Call(0, uintptr(handle), uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&buf[0])), 0, dmOut)
	if int32(r1) < 0 {
		return
	}
	dm := (*devModeW)(unsafe.Pointer(&buf[0]))

	var mode DevMode
	results := Translate(&mode, settings)
	for _, r := range results {
		if r.Outcome != OutcomeApplied {
			continue
		}
		switch r.Field {
		case "orientation":
			dm.Orientation = mode.Orientation
			dm.Fields |= dmOrientation
		case "duplex":
			dm.Duplex = mode.Duplex
			dm.Fields |= dmDuplex
		case "paperSize":
			dm.PaperSize = mode.PaperSize
			dm.Fields |= dmPaperSize
		case "quality":
			dm.PrintQuality = mode.Quality
			dm.Fields |= dmPrintQuality
		case "colorMode":
			dm.Color = mode.Color
			dm.Fields |= dmColor
		}
	}

	r1, _, _ = procDocumentProps.Call(0, uintptr(handle), uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&buf[0])), dmIn|dmOut)
	if int32(r1) < 0 {
		return
	}
	defaults := printerDefaults{DevMode: uintptr(unsafe.Pointer(&buf[0]))}
	_, _, _ = procResetPrinterW.Call(uintptr(handle), uintptr(unsafe.Pointer(&defaults)))
}

type printerInfo4 struct {
	PrinterName *uint16
	ServerName  *uint16
	Attributes  uint32
}

const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004
)

// spoolerList enumerates local and connected queues at info level 4,
// which needs no printer access rights.
func spoolerList() ([]string, error) {
	flags := printerEnumLocal | printerEnumConnections
	level := uint32(4)
	var needed, returned uint32
	r1, _, err := procEnumPrinters.Call(
		uintptr(flags), 0, uintptr(level), 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)),
	)
	if r1 == 0 && needed == 0 {
		return nil, err
	}
	buf := make([]byte, needed)
	r1, _, err = procEnumPrinters.Call(
		uintptr(flags), 0, uintptr(level),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)),
	)
	if r1 == 0 {
		return nil, err
	}
	names := make([]string, 0, returned)
	entrySize := unsafe.Sizeof(printerInfo4{})
	base := uintptr(unsafe.Pointer(&buf[0]))
	for i := 0; i < int(returned); i++ {
		ptr := (*printerInfo4)(unsafe.Pointer(base + uintptr(i)*entrySize))
		if name := windows.UTF16PtrToString(ptr.PrinterName); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func openPrinter(name string) (windows.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var handle windows.Handle
	r1, _, err := procOpenPrinterW.Call(uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&handle)), 0)
	if r1 == 0 {
		return 0, err
	}
	return handle, nil
}

func closePrinter(handle windows.Handle) {
	_, _, _ = procClosePrinter.Call(uintptr(handle))
}

func startDocPrinter(handle windows.Handle, name string) (uint32, error) {
	docName, _ := windows.UTF16PtrFromString(name)
	datatype, _ := windows.UTF16PtrFromString("RAW")
	doc := docInfo1{DocName: docName, Datatype: datatype}
	r1, _, err := procStartDoc.Call(uintptr(handle), 1, uintptr(unsafe.Pointer(&doc)))
	if r1 == 0 {
		return 0, err
	}
	return uint32(r1), nil
}

func endDocPrinter(handle windows.Handle, jobID uint32) {
	_, _, _ = procEndDoc.Call(uintptr(handle))
}

func startPagePrinter(handle windows.Handle) error {
	r1, _, err := procStartPage.Call(uintptr(handle))
	if r1 == 0 {
		return err
	}
	return nil
}

func endPagePrinter(handle windows.Handle) {
	_, _, _ = procEndPage.Call(uintptr(handle))
}

func writePrinter(handle windows.Handle, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var written uint32
	r1, _, err := procWritePrinter.Call(uintptr(handle), uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)), uintptr(unsafe.Pointer(&written)))
	if r1 == 0 {
		return err
	}
	if int(written) != len(data) {
		return errors.New("short write to spooler")
	}
	return nil
}
