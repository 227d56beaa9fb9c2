package nes

import (
	"image"
	"image/color"
)

// Ppu is a 2C02 picture processing unit running at 3x the CPU's clock rate.
// It draws background tiles from the first nametable (0x2000) with no
// scrolling applied: the loopy registers track PPUSCROLL/PPUADDR writes but
// rendering does not read them. Sprites are evaluated but not drawn.
//
// references:
// http://wiki.nesdev.com/w/index.php/PPU_registers
// http://wiki.nesdev.com/w/index.php/PPU_rendering
type Ppu struct {
	Cart *Cartridge
	disp *Display

	tblName    [2][1024]byte
	tblPallete [32]byte

	oam       objectAttributeMemory
	oamAddr   byte
	secondary [8]oamSprite
	spriteCnt int

	ctrl   PpuReg
	mask   PpuReg
	status PpuReg

	vramAddr PpuLoopyReg
	tramAddr PpuLoopyReg
	fineX    byte

	addrLatch  bool
	dataBuffer byte

	scanline int
	cycle    int

	frameComplete bool
	nmi           bool
}

func NewPpu() *Ppu {
	return &Ppu{
		oam:      make(objectAttributeMemory, 64),
		scanline: -1,
	}
}

func (p *Ppu) ConnectDisplay(d *Display) { p.disp = d }
func (p *Ppu) ConnectCartridge(c *Cartridge) {
	p.Cart = c
}

// cpuRead implements the CPU-visible half of the PPU's 8-register window.
// Reading PPUSTATUS clears vblank and the address latch; reading PPUDATA
// returns the *previous* read's buffered value for everything except
// palette memory, which is unbuffered.
func (p *Ppu) cpuRead(addr uint16) byte {
	var data byte

	switch addr {
	case 0x2002: // PPUSTATUS
		data = byte(p.status)&0xE0 | p.dataBuffer&0x1F
		p.status.clearFlag(statusVBlank)
		p.addrLatch = false
	case 0x2004: // OAMDATA
		data = p.oam.read(p.oamAddr)
	case 0x2007: // PPUDATA
		data = p.dataBuffer
		p.dataBuffer = p.ppuRead(p.vramAddr.value())
		if p.vramAddr.value() >= 0x3F00 {
			data = p.dataBuffer
		}
		p.advanceVramAddr()
	}

	return data
}

func (p *Ppu) cpuWrite(addr uint16, data byte) {
	switch addr {
	case 0x2000: // PPUCTRL
		p.ctrl = PpuReg(data)
		p.tramAddr.setNametable(data & 0x03)
	case 0x2001: // PPUMASK
		p.mask = PpuReg(data)
	case 0x2003: // OAMADDR
		p.oamAddr = data
	case 0x2004: // OAMDATA
		p.oam.write(p.oamAddr, data)
		p.oamAddr++
	case 0x2005: // PPUSCROLL
		if !p.addrLatch {
			p.fineX = data & 0x07
			p.tramAddr.setCoarseX(data >> 3)
		} else {
			p.tramAddr.setFineY(data & 0x07)
			p.tramAddr.setCoarseY(data >> 3)
		}
		p.addrLatch = !p.addrLatch
	case 0x2006: // PPUADDR
		if !p.addrLatch {
			p.tramAddr = (p.tramAddr & 0x00FF) | (PpuLoopyReg(data&0x3F) << 8)
		} else {
			p.tramAddr = (p.tramAddr & 0xFF00) | PpuLoopyReg(data)
			p.vramAddr = p.tramAddr
		}
		p.addrLatch = !p.addrLatch
	case 0x2007: // PPUDATA
		p.ppuWrite(p.vramAddr.value(), data)
		p.advanceVramAddr()
	}
}

func (p *Ppu) advanceVramAddr() {
	if p.ctrl.isFlagSet(ctrlVramInc) {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
}

// nametableIdx resolves a nametable address (0x2000-0x2FFF) to one of the
// two physical 1KiB nametables per the cartridge's mirroring arrangement.
func (p *Ppu) nametableIdx(addr uint16) (table int, offset uint16) {
	addr &= 0x0FFF
	table = int(addr / 0x0400)
	offset = addr % 0x0400

	switch p.Cart.Mirroring {
	case MirrorVertical:
		return table % 2, offset
	case MirrorHorizontal:
		return table / 2, offset
	default: // FourScreen: treat as two physical tables, same as vertical.
		return table % 2, offset
	}
}

// ppuRead implements the PPU's own bus: CHR memory on the cartridge,
// internal nametable RAM, and the 32-byte palette with its mirrors.
func (p *Ppu) ppuRead(addr uint16) byte {
	addr &= 0x3FFF

	switch {
	case addr <= 0x1FFF:
		return p.Cart.ppuRead(addr)
	case addr <= 0x3EFF:
		table, offset := p.nametableIdx(addr)
		return p.tblName[table][offset]
	case addr <= 0x3FFF:
		return p.tblPallete[p.paletteIdx(addr)]
	}
	return 0
}

func (p *Ppu) ppuWrite(addr uint16, data byte) {
	addr &= 0x3FFF

	switch {
	case addr <= 0x1FFF:
		p.Cart.ppuWrite(addr, data)
	case addr <= 0x3EFF:
		table, offset := p.nametableIdx(addr)
		p.tblName[table][offset] = data
	case addr <= 0x3FFF:
		p.tblPallete[p.paletteIdx(addr)] = data
	}
}

func (p *Ppu) paletteIdx(addr uint16) uint16 {
	idx := addr & 0x1F
	// Sprite palette entries 0x10/0x14/0x18/0x1C mirror the background
	// palette's transparent-color slot.
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx &^= 0x10
	}
	return idx
}

// Clock advances the PPU by one pixel/cycle. Background pixel generation is
// simplified and sprite pixels are not generated, relative to cycle-accurate
// rendering — spec.md's scope is the CPU core, and the PPU here exists to
// give the bus's register window real, observable side effects rather than
// to reproduce exact scanline timing.
func (p *Ppu) Clock() {
	if p.scanline == -1 && p.cycle == 1 {
		p.status.clearFlag(statusVBlank)
		p.status.clearFlag(statusSprite0Hit)
	}

	if p.scanline >= 0 && p.scanline < 240 && p.cycle == 1 {
		p.evaluateSprites()
	}

	if p.scanline >= 0 && p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel(p.cycle-1, p.scanline)
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.setFlag(statusVBlank)
		if p.ctrl.isFlagSet(ctrlNmi) {
			p.nmi = true
		}
	}

	p.cycle++
	if p.cycle >= 341 {
		p.cycle = 0
		p.scanline++
		if p.scanline >= 261 {
			p.scanline = -1
			p.frameComplete = true
		}
	}
}

// evaluateSprites scans primary OAM for up to 8 sprites that intersect the
// current scanline and copies them into secondary OAM, the same two-stage
// process real hardware uses to bound per-scanline sprite count. Sprite
// pixels are not composited into the frame; this exists to give OAMADDR/
// OAMDATA and the overflow flag real, observable behavior.
func (p *Ppu) evaluateSprites() {
	spriteHeight := 8
	if p.ctrl.isFlagSet(ctrlSpriteSize) {
		spriteHeight = 16
	}

	p.spriteCnt = 0
	for i := range p.oam {
		row := p.scanline - int(p.oam[i].y)
		if row < 0 || row >= spriteHeight {
			continue
		}

		if p.spriteCnt >= 8 {
			p.status.setFlag(statusSpriteOverflow)
			break
		}

		copyOamEntry(&p.secondary[p.spriteCnt], &p.oam[i])
		p.spriteCnt++
	}
}

// renderPixel resolves one background pixel from the first nametable
// (0x2000, whatever PPUCTRL selects) and the PPUCTRL-selected pattern table
// and, if a display is attached, paints it.
func (p *Ppu) renderPixel(x, y int) {
	if p.disp == nil || !p.mask.isFlagSet(maskBgShow) {
		return
	}

	tileX, tileY := x/8, y/8
	fineX, fineY := x%8, y%8

	table, offset := p.nametableIdx(0x2000 + uint16(tileY)*32 + uint16(tileX))
	tileID := p.tblName[table][offset]

	bgPatternTable := uint16(0)
	if p.ctrl.isFlagSet(ctrlBgPatternTbl) {
		bgPatternTable = 0x1000
	}

	lo := p.Cart.ppuRead(bgPatternTable + uint16(tileID)*16 + uint16(fineY))
	hi := p.Cart.ppuRead(bgPatternTable + uint16(tileID)*16 + uint16(fineY) + 8)

	bit := 7 - fineX
	pixel := ((hi>>uint(bit))&1)<<1 | (lo>>uint(bit))&1

	paletteEntry := p.tblPallete[pixel]
	p.disp.DrawPixel(x, y, nesPalette[paletteEntry&0x3F])
}

// GetPatternTable decodes one of the two 4KiB CHR pattern tables into a
// 128x128 debug image, 8x8 tiles of 2bpp pixels read straight from CHR
// memory with no palette applied beyond grayscale shading.
func (p *Ppu) GetPatternTable(idx int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	if p.Cart == nil {
		return img
	}

	base := uint16(idx) * 0x1000
	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			tileOffset := uint16(tileY*256 + tileX*16)
			for row := 0; row < 8; row++ {
				lo := p.Cart.ppuRead(base + tileOffset + uint16(row))
				hi := p.Cart.ppuRead(base + tileOffset + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					bit := 7 - col
					pixel := ((hi>>uint(bit))&1)<<1 | (lo>>uint(bit))&1
					shade := color.RGBA{R: pixel * 85, G: pixel * 85, B: pixel * 85, A: 255}
					img.SetRGBA(tileX*8+col, tileY*8+row, shade)
				}
			}
		}
	}

	return img
}

// nesPalette is the standard 64-color 2C02 output palette.
var nesPalette = [64]color.RGBA{
	{84, 84, 84, 255}, {0, 30, 116, 255}, {8, 16, 144, 255}, {48, 0, 136, 255},
	{68, 0, 100, 255}, {92, 0, 48, 255}, {84, 4, 0, 255}, {60, 24, 0, 255},
	{32, 42, 0, 255}, {8, 58, 0, 255}, {0, 64, 0, 255}, {0, 60, 0, 255},
	{0, 50, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
	{152, 150, 152, 255}, {8, 76, 196, 255}, {48, 50, 236, 255}, {92, 30, 228, 255},
	{136, 20, 176, 255}, {160, 20, 100, 255}, {152, 34, 32, 255}, {120, 60, 0, 255},
	{84, 90, 0, 255}, {40, 114, 0, 255}, {8, 124, 0, 255}, {0, 118, 40, 255},
	{0, 102, 120, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
	{236, 238, 236, 255}, {76, 154, 236, 255}, {120, 124, 236, 255}, {176, 98, 236, 255},
	{228, 84, 236, 255}, {236, 88, 180, 255}, {236, 106, 100, 255}, {212, 136, 32, 255},
	{160, 170, 0, 255}, {116, 196, 0, 255}, {76, 208, 32, 255}, {56, 204, 108, 255},
	{56, 180, 204, 255}, {60, 60, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
	{236, 238, 236, 255}, {168, 204, 236, 255}, {188, 188, 236, 255}, {212, 178, 236, 255},
	{236, 174, 236, 255}, {236, 174, 212, 255}, {236, 180, 176, 255}, {228, 196, 144, 255},
	{204, 210, 120, 255}, {180, 222, 120, 255}, {168, 226, 144, 255}, {152, 226, 180, 255},
	{160, 214, 228, 255}, {160, 162, 160, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
}
